package service

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/poefarm/tracker-server-go/internal/model"
	"github.com/poefarm/tracker-server-go/internal/repository"
)

type mockSettingsRepo struct {
	mock.Mock
}

func (m *mockSettingsRepo) FindByUserID(ctx context.Context, userID string) (*model.UserSettings, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserSettings), args.Error(1)
}

func (m *mockSettingsRepo) Create(ctx context.Context, userID string, lastAdminLogin time.Time) (*model.UserSettings, error) {
	args := m.Called(ctx, userID, lastAdminLogin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserSettings), args.Error(1)
}

func (m *mockSettingsRepo) UpdateLastAdminLogin(ctx context.Context, id string, lastAdminLogin time.Time) error {
	args := m.Called(ctx, id, lastAdminLogin)
	return args.Error(0)
}

func (m *mockSettingsRepo) WithTx(tx *sqlx.Tx) repository.UserSettingsRepository {
	return m
}

func TestSettingsService_RecordAdminLogin(t *testing.T) {
	t.Run("creates settings row and returns the written time on first login", func(t *testing.T) {
		settings := new(mockSettingsRepo)
		svc := NewSettingsService(fakeTxRunner{}, settings, fixedClock)

		ctx := context.Background()
		settings.On("FindByUserID", ctx, "user-1").Return(nil, nil)
		settings.On("Create", ctx, "user-1", testNow).Return(&model.UserSettings{ID: "set-1", UserID: "user-1", LastAdminLoginTime: testNow}, nil)

		written, err := svc.RecordAdminLogin(ctx, "user-1")

		assert.NoError(t, err)
		assert.True(t, written.Equal(testNow))
		settings.AssertExpectations(t)
	})

	t.Run("updates existing row and returns the written time", func(t *testing.T) {
		settings := new(mockSettingsRepo)
		svc := NewSettingsService(fakeTxRunner{}, settings, fixedClock)

		ctx := context.Background()
		lastLogin := testNow.Add(-48 * time.Hour)
		settings.On("FindByUserID", ctx, "user-1").Return(&model.UserSettings{ID: "set-1", UserID: "user-1", LastAdminLoginTime: lastLogin}, nil)
		settings.On("UpdateLastAdminLogin", ctx, "set-1", testNow).Return(nil)

		written, err := svc.RecordAdminLogin(ctx, "user-1")

		assert.NoError(t, err)
		assert.True(t, written.Equal(testNow))
		settings.AssertExpectations(t)
	})

	t.Run("propagates repo errors", func(t *testing.T) {
		settings := new(mockSettingsRepo)
		svc := NewSettingsService(fakeTxRunner{}, settings, fixedClock)

		ctx := context.Background()
		settings.On("FindByUserID", ctx, "user-1").Return(nil, assert.AnError)

		written, err := svc.RecordAdminLogin(ctx, "user-1")

		assert.Error(t, err)
		assert.True(t, written.IsZero())
	})
}

func TestSettingsService_GetLastAdminLogin(t *testing.T) {
	t.Run("returns stored login time", func(t *testing.T) {
		settings := new(mockSettingsRepo)
		svc := NewSettingsService(fakeTxRunner{}, settings, fixedClock)

		ctx := context.Background()
		lastLogin := testNow.Add(-time.Hour)
		settings.On("FindByUserID", ctx, "user-1").Return(&model.UserSettings{ID: "set-1", LastAdminLoginTime: lastLogin}, nil)

		got, err := svc.GetLastAdminLogin(ctx, "user-1")

		assert.NoError(t, err)
		assert.Equal(t, lastLogin, *got)
	})

	t.Run("nil when user never logged in", func(t *testing.T) {
		settings := new(mockSettingsRepo)
		svc := NewSettingsService(fakeTxRunner{}, settings, fixedClock)

		ctx := context.Background()
		settings.On("FindByUserID", ctx, "user-1").Return(nil, nil)

		got, err := svc.GetLastAdminLogin(ctx, "user-1")

		assert.NoError(t, err)
		assert.Nil(t, got)
	})
}
