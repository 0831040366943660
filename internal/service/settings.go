package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/poefarm/tracker-server-go/internal/model"
	"github.com/poefarm/tracker-server-go/internal/repository"
)

type SettingsService struct {
	tx       TxRunner
	settings repository.UserSettingsRepository
	now      Clock
}

func NewSettingsService(tx TxRunner, settings repository.UserSettingsRepository, now Clock) *SettingsService {
	return &SettingsService{tx: tx, settings: settings, now: now}
}

// RecordAdminLogin stamps the login time on the user's settings row, creating
// the row on first login. Returns the timestamp written.
func (s *SettingsService) RecordAdminLogin(ctx context.Context, userID string) (time.Time, error) {
	now := s.now()

	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		repo := s.settings.WithTx(tx)

		settings, err := repo.FindByUserID(ctx, userID)
		if err != nil {
			return fmt.Errorf("find user settings: %w", err)
		}
		if settings == nil {
			if _, err := repo.Create(ctx, userID, now); err != nil {
				return fmt.Errorf("create user settings: %w", err)
			}
			return nil
		}

		if err := repo.UpdateLastAdminLogin(ctx, settings.ID, now); err != nil {
			return fmt.Errorf("update last admin login: %w", err)
		}
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}
	return now, nil
}

func (s *SettingsService) GetSettings(ctx context.Context, userID string) (*model.UserSettings, error) {
	return s.settings.FindByUserID(ctx, userID)
}

// GetLastAdminLogin returns the stored login time, or nil when the user has
// never logged into the admin area.
func (s *SettingsService) GetLastAdminLogin(ctx context.Context, userID string) (*time.Time, error) {
	settings, err := s.settings.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user settings: %w", err)
	}
	if settings == nil {
		return nil, nil
	}
	t := settings.LastAdminLoginTime
	return &t, nil
}
