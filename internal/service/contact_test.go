package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apperrors "github.com/poefarm/tracker-server-go/internal/errors"
	"github.com/poefarm/tracker-server-go/internal/model"
	"github.com/poefarm/tracker-server-go/internal/validation"
)

type mockContactRepo struct {
	mock.Mock
}

func (m *mockContactRepo) FindByID(ctx context.Context, id string) (*model.ContactMessage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ContactMessage), args.Error(1)
}

func (m *mockContactRepo) FindLatestByUserID(ctx context.Context, userID string, limit int) ([]model.ContactMessage, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ContactMessage), args.Error(1)
}

func (m *mockContactRepo) FindByUserID(ctx context.Context, userID string) ([]model.ContactMessage, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ContactMessage), args.Error(1)
}

func (m *mockContactRepo) FindAll(ctx context.Context) ([]model.ContactMessage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ContactMessage), args.Error(1)
}

func (m *mockContactRepo) FindByStatus(ctx context.Context, status model.ContactMessageStatus) ([]model.ContactMessage, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ContactMessage), args.Error(1)
}

func (m *mockContactRepo) Create(ctx context.Context, params model.CreateContactMessageParams, now time.Time) (*model.ContactMessage, error) {
	args := m.Called(ctx, params, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ContactMessage), args.Error(1)
}

func (m *mockContactRepo) UpdateStatus(ctx context.Context, id string, status model.ContactMessageStatus, now time.Time) error {
	args := m.Called(ctx, id, status, now)
	return args.Error(0)
}

func (m *mockContactRepo) CountByStatus(ctx context.Context, status model.ContactMessageStatus) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}

func (m *mockContactRepo) CountCreatedAfter(ctx context.Context, t time.Time) (int, error) {
	args := m.Called(ctx, t)
	return args.Int(0), args.Error(1)
}

func newContactService(messages *mockContactRepo) *ContactService {
	return NewContactService(messages, validation.New(), fixedClock)
}

func contactParams() model.CreateContactMessageParams {
	return model.CreateContactMessageParams{
		UserID:  "user-1",
		Subject: "Feature request",
		Message: "Please add a dark theme.",
	}
}

func TestContactService_Submit(t *testing.T) {
	t.Run("accepts first message of the day", func(t *testing.T) {
		messages := new(mockContactRepo)
		svc := newContactService(messages)

		ctx := context.Background()
		params := contactParams()
		messages.On("FindLatestByUserID", ctx, "user-1", 2).Return([]model.ContactMessage{}, nil)
		messages.On("Create", ctx, params, testNow).Return(&model.ContactMessage{ID: "msg-1", Status: model.ContactStatusPending}, nil)

		msg, err := svc.Submit(ctx, params)

		assert.NoError(t, err)
		assert.Equal(t, model.ContactStatusPending, msg.Status)
		messages.AssertExpectations(t)
	})

	t.Run("accepts second message of the day", func(t *testing.T) {
		messages := new(mockContactRepo)
		svc := newContactService(messages)

		ctx := context.Background()
		params := contactParams()
		messages.On("FindLatestByUserID", ctx, "user-1", 2).Return([]model.ContactMessage{
			{ID: "msg-1", CreatedAt: testNow.Add(-2 * time.Hour)},
			{ID: "msg-0", CreatedAt: testNow.Add(-30 * time.Hour)},
		}, nil)
		messages.On("Create", ctx, params, testNow).Return(&model.ContactMessage{ID: "msg-2"}, nil)

		_, err := svc.Submit(ctx, params)

		assert.NoError(t, err)
		messages.AssertExpectations(t)
	})

	t.Run("blocks third message of the day", func(t *testing.T) {
		messages := new(mockContactRepo)
		svc := newContactService(messages)

		ctx := context.Background()
		messages.On("FindLatestByUserID", ctx, "user-1", 2).Return([]model.ContactMessage{
			{ID: "msg-2", CreatedAt: testNow.Add(-1 * time.Hour)},
			{ID: "msg-1", CreatedAt: testNow.Add(-3 * time.Hour)},
		}, nil)

		msg, err := svc.Submit(ctx, contactParams())

		assert.Nil(t, msg)
		assert.Equal(t, apperrors.ErrCodeRateLimited, apperrors.GetCode(err))
		assert.Contains(t, err.Error(), "daily limit of 2 messages")
		messages.AssertNotCalled(t, "Create")
	})

	t.Run("yesterday's messages do not count", func(t *testing.T) {
		messages := new(mockContactRepo)
		svc := newContactService(messages)

		ctx := context.Background()
		params := contactParams()
		// testNow is 12:00 UTC; both fall before local midnight.
		messages.On("FindLatestByUserID", ctx, "user-1", 2).Return([]model.ContactMessage{
			{ID: "msg-2", CreatedAt: testNow.Add(-13 * time.Hour)},
			{ID: "msg-1", CreatedAt: testNow.Add(-14 * time.Hour)},
		}, nil)
		messages.On("Create", ctx, params, testNow).Return(&model.ContactMessage{ID: "msg-3"}, nil)

		_, err := svc.Submit(ctx, params)

		assert.NoError(t, err)
		messages.AssertExpectations(t)
	})

	t.Run("rejects overlong message before any repo call", func(t *testing.T) {
		messages := new(mockContactRepo)
		svc := newContactService(messages)

		params := contactParams()
		params.Message = string(make([]byte, 5001))

		msg, err := svc.Submit(context.Background(), params)

		assert.Nil(t, msg)
		assert.Equal(t, apperrors.ErrCodeValidation, apperrors.GetCode(err))
		messages.AssertNotCalled(t, "FindLatestByUserID")
	})
}

func TestContactService_SetStatus(t *testing.T) {
	t.Run("updates status", func(t *testing.T) {
		messages := new(mockContactRepo)
		svc := newContactService(messages)

		ctx := context.Background()
		messages.On("FindByID", ctx, "msg-1").Return(&model.ContactMessage{ID: "msg-1", Status: model.ContactStatusPending}, nil)
		messages.On("UpdateStatus", ctx, "msg-1", model.ContactStatusStarred, testNow).Return(nil)

		msg, err := svc.SetStatus(ctx, "msg-1", model.ContactStatusStarred)

		assert.NoError(t, err)
		assert.Equal(t, model.ContactStatusStarred, msg.Status)
		messages.AssertExpectations(t)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		messages := new(mockContactRepo)
		svc := newContactService(messages)

		msg, err := svc.SetStatus(context.Background(), "msg-1", "archived")

		assert.Nil(t, msg)
		assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.GetCode(err))
		messages.AssertNotCalled(t, "UpdateStatus")
	})

	t.Run("missing message is not found", func(t *testing.T) {
		messages := new(mockContactRepo)
		svc := newContactService(messages)

		ctx := context.Background()
		messages.On("FindByID", ctx, "msg-gone").Return(nil, nil)

		msg, err := svc.SetStatus(ctx, "msg-gone", model.ContactStatusAddressed)

		assert.Nil(t, msg)
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	})
}

func TestContactService_CountNew(t *testing.T) {
	t.Run("counts pending messages without a reference time", func(t *testing.T) {
		messages := new(mockContactRepo)
		svc := newContactService(messages)

		ctx := context.Background()
		messages.On("CountByStatus", ctx, model.ContactStatusPending).Return(3, nil)

		count, err := svc.CountNew(ctx, nil)

		assert.NoError(t, err)
		assert.Equal(t, 3, count)
		messages.AssertNotCalled(t, "CountCreatedAfter")
	})

	t.Run("counts messages since the reference time regardless of status", func(t *testing.T) {
		messages := new(mockContactRepo)
		svc := newContactService(messages)

		ctx := context.Background()
		since := testNow.Add(-24 * time.Hour)
		messages.On("CountCreatedAfter", ctx, since).Return(4, nil)

		count, err := svc.CountNew(ctx, &since)

		assert.NoError(t, err)
		assert.Equal(t, 4, count)
		messages.AssertNotCalled(t, "CountByStatus")
	})
}
