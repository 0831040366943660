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

type StintRepository interface {
	FindByID(ctx context.Context, id string) (*model.Stint, error)
	FindBySessionAndUser(ctx context.Context, sessionID, userID string) ([]model.Stint, error)
	Create(ctx context.Context, params model.CreateStintParams, now time.Time) (*model.Stint, error)
	Delete(ctx context.Context, id string) error
	DeleteBySessionID(ctx context.Context, sessionID string) (int64, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) StintRepository
}

type stintDB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type stintRepo struct {
	db stintDB
}

func NewStintRepository(db *sqlx.DB) StintRepository {
	return &stintRepo{db: db}
}

func (r *stintRepo) WithTx(tx *sqlx.Tx) StintRepository {
	return &stintRepo{db: tx}
}

func (r *stintRepo) FindByID(ctx context.Context, id string) (*model.Stint, error) {
	var stint model.Stint
	err := r.db.GetContext(ctx, &stint, `
		SELECT * FROM stints WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &stint, nil
}

func (r *stintRepo) FindBySessionAndUser(ctx context.Context, sessionID, userID string) ([]model.Stint, error) {
	stints := []model.Stint{}
	err := r.db.SelectContext(ctx, &stints, `
		SELECT * FROM stints
		WHERE session_id = $1 AND user_id = $2
		ORDER BY created_at DESC
	`, sessionID, userID)
	if err != nil {
		return nil, err
	}
	return stints, nil
}

func (r *stintRepo) Create(ctx context.Context, params model.CreateStintParams, now time.Time) (*model.Stint, error) {
	var stint model.Stint
	err := r.db.GetContext(ctx, &stint, `
		INSERT INTO stints (id, session_id, user_id, start_time, end_time, duration_ms, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING *
	`, uuid.NewString(), params.SessionID, params.UserID, params.StartTime, params.EndTime, params.DurationMs, now)
	if err != nil {
		return nil, err
	}
	return &stint, nil
}

func (r *stintRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM stints WHERE id = $1`, id)
	return err
}

func (r *stintRepo) DeleteBySessionID(ctx context.Context, sessionID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM stints WHERE session_id = $1`, sessionID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
