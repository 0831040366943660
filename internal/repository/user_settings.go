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

type UserSettingsRepository interface {
	FindByUserID(ctx context.Context, userID string) (*model.UserSettings, error)
	Create(ctx context.Context, userID string, lastAdminLogin time.Time) (*model.UserSettings, error)
	UpdateLastAdminLogin(ctx context.Context, id string, lastAdminLogin time.Time) error
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) UserSettingsRepository
}

type userSettingsDB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type userSettingsRepo struct {
	db userSettingsDB
}

func NewUserSettingsRepository(db *sqlx.DB) UserSettingsRepository {
	return &userSettingsRepo{db: db}
}

func (r *userSettingsRepo) WithTx(tx *sqlx.Tx) UserSettingsRepository {
	return &userSettingsRepo{db: tx}
}

func (r *userSettingsRepo) FindByUserID(ctx context.Context, userID string) (*model.UserSettings, error) {
	var settings model.UserSettings
	err := r.db.GetContext(ctx, &settings, `
		SELECT * FROM user_settings WHERE user_id = $1
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *userSettingsRepo) Create(ctx context.Context, userID string, lastAdminLogin time.Time) (*model.UserSettings, error) {
	var settings model.UserSettings
	err := r.db.GetContext(ctx, &settings, `
		INSERT INTO user_settings (id, user_id, last_admin_login_time)
		VALUES ($1, $2, $3)
		RETURNING *
	`, uuid.NewString(), userID, lastAdminLogin)
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *userSettingsRepo) UpdateLastAdminLogin(ctx context.Context, id string, lastAdminLogin time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE user_settings SET last_admin_login_time = $2 WHERE id = $1
	`, id, lastAdminLogin)
	return err
}
