package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/poefarm/tracker-server-go/internal/model"
)

type ContactMessageRepository interface {
	FindByID(ctx context.Context, id string) (*model.ContactMessage, error)
	FindLatestByUserID(ctx context.Context, userID string, limit int) ([]model.ContactMessage, error)
	FindByUserID(ctx context.Context, userID string) ([]model.ContactMessage, error)
	FindAll(ctx context.Context) ([]model.ContactMessage, error)
	FindByStatus(ctx context.Context, status model.ContactMessageStatus) ([]model.ContactMessage, error)
	Create(ctx context.Context, params model.CreateContactMessageParams, now time.Time) (*model.ContactMessage, error)
	UpdateStatus(ctx context.Context, id string, status model.ContactMessageStatus, now time.Time) error
	CountByStatus(ctx context.Context, status model.ContactMessageStatus) (int, error)
	CountCreatedAfter(ctx context.Context, t time.Time) (int, error)
}

type contactMessageRepo struct {
	db *sqlx.DB
}

func NewContactMessageRepository(db *sqlx.DB) ContactMessageRepository {
	return &contactMessageRepo{db: db}
}

func (r *contactMessageRepo) FindByID(ctx context.Context, id string) (*model.ContactMessage, error) {
	var msg model.ContactMessage
	err := r.db.GetContext(ctx, &msg, `
		SELECT * FROM contact_messages WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *contactMessageRepo) FindLatestByUserID(ctx context.Context, userID string, limit int) ([]model.ContactMessage, error) {
	messages := []model.ContactMessage{}
	err := r.db.SelectContext(ctx, &messages, `
		SELECT * FROM contact_messages
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *contactMessageRepo) FindByUserID(ctx context.Context, userID string) ([]model.ContactMessage, error) {
	messages := []model.ContactMessage{}
	err := r.db.SelectContext(ctx, &messages, `
		SELECT * FROM contact_messages
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *contactMessageRepo) FindAll(ctx context.Context) ([]model.ContactMessage, error) {
	messages := []model.ContactMessage{}
	err := r.db.SelectContext(ctx, &messages, `
		SELECT * FROM contact_messages ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *contactMessageRepo) FindByStatus(ctx context.Context, status model.ContactMessageStatus) ([]model.ContactMessage, error) {
	messages := []model.ContactMessage{}
	err := r.db.SelectContext(ctx, &messages, `
		SELECT * FROM contact_messages
		WHERE status = $1
		ORDER BY created_at DESC
	`, status)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *contactMessageRepo) Create(ctx context.Context, params model.CreateContactMessageParams, now time.Time) (*model.ContactMessage, error) {
	var msg model.ContactMessage
	err := r.db.GetContext(ctx, &msg, `
		INSERT INTO contact_messages (id, user_id, subject, message, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'pending', $5, $5)
		RETURNING *
	`, uuid.NewString(), params.UserID, params.Subject, params.Message, now)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *contactMessageRepo) UpdateStatus(ctx context.Context, id string, status model.ContactMessageStatus, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE contact_messages SET
			status = $2,
			updated_at = $3
		WHERE id = $1
	`, id, status, now)
	return err
}

func (r *contactMessageRepo) CountByStatus(ctx context.Context, status model.ContactMessageStatus) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM contact_messages WHERE status = $1
	`, status)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *contactMessageRepo) CountCreatedAfter(ctx context.Context, t time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM contact_messages WHERE created_at > $1
	`, t)
	if err != nil {
		return 0, err
	}
	return count, nil
}
