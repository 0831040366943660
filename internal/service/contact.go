package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/poefarm/tracker-server-go/internal/config"
	apperrors "github.com/poefarm/tracker-server-go/internal/errors"
	"github.com/poefarm/tracker-server-go/internal/metrics"
	"github.com/poefarm/tracker-server-go/internal/model"
	"github.com/poefarm/tracker-server-go/internal/repository"
	"github.com/poefarm/tracker-server-go/internal/validation"
)

type ContactService struct {
	messages  repository.ContactMessageRepository
	validator *validation.Validator
	now       Clock
}

func NewContactService(
	messages repository.ContactMessageRepository,
	validator *validation.Validator,
	now Clock,
) *ContactService {
	return &ContactService{
		messages:  messages,
		validator: validator,
		now:       now,
	}
}

// Submit stores a contact message unless the user already hit the daily cap.
// The cap window is the current calendar day in the server's local time, so
// it resets at local midnight rather than rolling 24 hours.
func (s *ContactService) Submit(ctx context.Context, params model.CreateContactMessageParams) (*model.ContactMessage, error) {
	if err := s.validator.ContactSubmit(&params); err != nil {
		return nil, err
	}

	latest, err := s.messages.FindLatestByUserID(ctx, params.UserID, config.ContactDailyLimit)
	if err != nil {
		return nil, fmt.Errorf("find latest contact messages: %w", err)
	}

	now := s.now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayEnd := todayStart.AddDate(0, 0, 1)

	sentToday := 0
	for _, msg := range latest {
		created := msg.CreatedAt.In(now.Location())
		if !created.Before(todayStart) && created.Before(todayEnd) {
			sentToday++
		}
	}
	if sentToday >= config.ContactDailyLimit {
		metrics.ContactMessageThrottled()
		log.Warn().
			Str("userId", params.UserID).
			Int("sentToday", sentToday).
			Msg("contact message rejected, daily limit reached")
		return nil, apperrors.RateLimited(fmt.Sprintf(
			"You have reached the daily limit of %d messages. Please try again tomorrow to prevent spam.",
			config.ContactDailyLimit,
		))
	}

	msg, err := s.messages.Create(ctx, params, now)
	if err != nil {
		return nil, fmt.Errorf("create contact message: %w", err)
	}

	metrics.ContactMessageSubmitted()
	log.Info().
		Str("messageId", msg.ID).
		Str("userId", msg.UserID).
		Msg("contact message submitted")

	return msg, nil
}

func (s *ContactService) ListByUser(ctx context.Context, userID string) ([]model.ContactMessage, error) {
	return s.messages.FindByUserID(ctx, userID)
}

func (s *ContactService) ListAll(ctx context.Context) ([]model.ContactMessage, error) {
	return s.messages.FindAll(ctx)
}

func (s *ContactService) ListByStatus(ctx context.Context, status model.ContactMessageStatus) ([]model.ContactMessage, error) {
	if !status.IsValid() {
		return nil, apperrors.InvalidInput("status", fmt.Sprintf("unknown status %q", status))
	}
	return s.messages.FindByStatus(ctx, status)
}

func (s *ContactService) SetStatus(ctx context.Context, id string, status model.ContactMessageStatus) (*model.ContactMessage, error) {
	if !status.IsValid() {
		return nil, apperrors.InvalidInput("status", fmt.Sprintf("unknown status %q", status))
	}

	msg, err := s.messages.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find contact message: %w", err)
	}
	if msg == nil {
		return nil, apperrors.NotFound("Message")
	}

	now := s.now()
	if err := s.messages.UpdateStatus(ctx, id, status, now); err != nil {
		return nil, fmt.Errorf("update contact message status: %w", err)
	}

	msg.Status = status
	msg.UpdatedAt = now
	return msg, nil
}

// CountNew reports how many messages an admin has not seen. With no reference
// time it counts messages still pending triage; given the admin's last login
// it counts everything created since then regardless of status.
func (s *ContactService) CountNew(ctx context.Context, since *time.Time) (int, error) {
	if since == nil {
		return s.messages.CountByStatus(ctx, model.ContactStatusPending)
	}
	return s.messages.CountCreatedAfter(ctx, *since)
}
