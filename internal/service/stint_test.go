package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/poefarm/tracker-server-go/internal/errors"
	"github.com/poefarm/tracker-server-go/internal/model"
	"github.com/poefarm/tracker-server-go/internal/validation"
)

func newStintService(stints *mockStintRepo, sessions *mockSessionRepo) *StintService {
	return NewStintService(stints, sessions, validation.New(), fixedClock)
}

func validStintParams() model.CreateStintParams {
	start := testNow.Add(-30 * time.Minute)
	return model.CreateStintParams{
		SessionID:  "sess-1",
		UserID:     "user-1",
		StartTime:  start,
		EndTime:    testNow,
		DurationMs: int64(30 * time.Minute / time.Millisecond),
	}
}

func TestStintService_Create(t *testing.T) {
	t.Run("records stint on owned session", func(t *testing.T) {
		stints := new(mockStintRepo)
		sessions := new(mockSessionRepo)
		svc := newStintService(stints, sessions)

		ctx := context.Background()
		params := validStintParams()
		sessions.On("FindByID", ctx, "sess-1").Return(&model.FarmingSession{ID: "sess-1", UserID: "user-1"}, nil)
		stints.On("Create", ctx, params, testNow).Return(&model.Stint{ID: "stint-1", SessionID: "sess-1", DurationMs: params.DurationMs}, nil)

		stint, err := svc.Create(ctx, params)

		assert.NoError(t, err)
		assert.Equal(t, "stint-1", stint.ID)
		stints.AssertExpectations(t)
	})

	t.Run("refuses stint on foreign session", func(t *testing.T) {
		stints := new(mockStintRepo)
		sessions := new(mockSessionRepo)
		svc := newStintService(stints, sessions)

		ctx := context.Background()
		params := validStintParams()
		sessions.On("FindByID", ctx, "sess-1").Return(&model.FarmingSession{ID: "sess-1", UserID: "user-2"}, nil)

		stint, err := svc.Create(ctx, params)

		assert.Nil(t, stint)
		assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.GetCode(err))
		stints.AssertNotCalled(t, "Create")
	})

	t.Run("missing session is not found", func(t *testing.T) {
		stints := new(mockStintRepo)
		sessions := new(mockSessionRepo)
		svc := newStintService(stints, sessions)

		ctx := context.Background()
		sessions.On("FindByID", ctx, "sess-1").Return(nil, nil)

		stint, err := svc.Create(ctx, validStintParams())

		assert.Nil(t, stint)
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	})

	t.Run("rejects duration that disagrees with the interval", func(t *testing.T) {
		stints := new(mockStintRepo)
		sessions := new(mockSessionRepo)
		svc := newStintService(stints, sessions)

		params := validStintParams()
		params.DurationMs += 5000

		stint, err := svc.Create(context.Background(), params)

		assert.Nil(t, stint)
		assert.Equal(t, apperrors.ErrCodeValidation, apperrors.GetCode(err))
		sessions.AssertNotCalled(t, "FindByID")
	})

	t.Run("rejects end before start", func(t *testing.T) {
		stints := new(mockStintRepo)
		sessions := new(mockSessionRepo)
		svc := newStintService(stints, sessions)

		params := validStintParams()
		params.EndTime = params.StartTime.Add(-time.Minute)
		params.DurationMs = 0

		stint, err := svc.Create(context.Background(), params)

		assert.Nil(t, stint)
		assert.Equal(t, apperrors.ErrCodeValidation, apperrors.GetCode(err))
	})
}

func TestStintService_Delete(t *testing.T) {
	t.Run("deletes owned stint", func(t *testing.T) {
		stints := new(mockStintRepo)
		sessions := new(mockSessionRepo)
		svc := newStintService(stints, sessions)

		ctx := context.Background()
		stints.On("FindByID", ctx, "stint-1").Return(&model.Stint{ID: "stint-1", UserID: "user-1"}, nil)
		stints.On("Delete", ctx, "stint-1").Return(nil)

		err := svc.Delete(ctx, "stint-1", "user-1")

		assert.NoError(t, err)
		stints.AssertExpectations(t)
	})

	t.Run("refuses foreign stint", func(t *testing.T) {
		stints := new(mockStintRepo)
		sessions := new(mockSessionRepo)
		svc := newStintService(stints, sessions)

		ctx := context.Background()
		stints.On("FindByID", ctx, "stint-1").Return(&model.Stint{ID: "stint-1", UserID: "user-2"}, nil)

		err := svc.Delete(ctx, "stint-1", "user-1")

		assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.GetCode(err))
		stints.AssertNotCalled(t, "Delete")
	})

	t.Run("missing stint is not found", func(t *testing.T) {
		stints := new(mockStintRepo)
		sessions := new(mockSessionRepo)
		svc := newStintService(stints, sessions)

		ctx := context.Background()
		stints.On("FindByID", ctx, "stint-gone").Return(nil, nil)

		err := svc.Delete(ctx, "stint-gone", "user-1")

		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	})
}

func TestStintService_TotalFarmingTime(t *testing.T) {
	t.Run("sums durations in seconds", func(t *testing.T) {
		stints := new(mockStintRepo)
		sessions := new(mockSessionRepo)
		svc := newStintService(stints, sessions)

		ctx := context.Background()
		stints.On("FindBySessionAndUser", ctx, "sess-1", "user-1").Return([]model.Stint{
			{ID: "stint-1", DurationMs: 60_000},
			{ID: "stint-2", DurationMs: 90_500},
		}, nil)

		total, err := svc.TotalFarmingTime(ctx, "sess-1", "user-1")

		assert.NoError(t, err)
		assert.Equal(t, 150.5, total.TotalDurationSeconds)
		assert.Equal(t, 2, total.StintCount)
	})

	t.Run("no stints yields zero", func(t *testing.T) {
		stints := new(mockStintRepo)
		sessions := new(mockSessionRepo)
		svc := newStintService(stints, sessions)

		ctx := context.Background()
		stints.On("FindBySessionAndUser", ctx, "sess-1", "user-1").Return([]model.Stint{}, nil)

		total, err := svc.TotalFarmingTime(ctx, "sess-1", "user-1")

		assert.NoError(t, err)
		assert.Equal(t, 0.0, total.TotalDurationSeconds)
		assert.Equal(t, 0, total.StintCount)
	})
}
