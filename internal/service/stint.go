package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	apperrors "github.com/poefarm/tracker-server-go/internal/errors"
	"github.com/poefarm/tracker-server-go/internal/model"
	"github.com/poefarm/tracker-server-go/internal/repository"
	"github.com/poefarm/tracker-server-go/internal/validation"
)

type StintService struct {
	stints    repository.StintRepository
	sessions  repository.FarmingSessionRepository
	validator *validation.Validator
	now       Clock
}

func NewStintService(
	stints repository.StintRepository,
	sessions repository.FarmingSessionRepository,
	validator *validation.Validator,
	now Clock,
) *StintService {
	return &StintService{
		stints:    stints,
		sessions:  sessions,
		validator: validator,
		now:       now,
	}
}

// Create records a finished timed interval. The caller must own the parent
// session; the stint keeps the owner id denormalized for per-user queries.
func (s *StintService) Create(ctx context.Context, params model.CreateStintParams) (*model.Stint, error) {
	if err := s.validator.StintCreate(&params); err != nil {
		return nil, err
	}

	session, err := s.sessions.FindByID(ctx, params.SessionID)
	if err != nil {
		return nil, fmt.Errorf("find farming session: %w", err)
	}
	if session == nil {
		return nil, apperrors.NotFound("Session")
	}
	if session.UserID != params.UserID {
		return nil, apperrors.Unauthorized("You can only add stints to your own sessions")
	}

	stint, err := s.stints.Create(ctx, params, s.now())
	if err != nil {
		return nil, fmt.Errorf("create stint: %w", err)
	}

	log.Debug().
		Str("stintId", stint.ID).
		Str("sessionId", stint.SessionID).
		Int64("durationMs", stint.DurationMs).
		Msg("stint recorded")

	return stint, nil
}

func (s *StintService) ListBySession(ctx context.Context, sessionID, userID string) ([]model.Stint, error) {
	return s.stints.FindBySessionAndUser(ctx, sessionID, userID)
}

func (s *StintService) Delete(ctx context.Context, stintID, userID string) error {
	stint, err := s.stints.FindByID(ctx, stintID)
	if err != nil {
		return fmt.Errorf("find stint: %w", err)
	}
	if stint == nil {
		return apperrors.NotFound("Stint")
	}
	if stint.UserID != userID {
		return apperrors.Unauthorized("You can only delete your own stints")
	}

	if err := s.stints.Delete(ctx, stintID); err != nil {
		return fmt.Errorf("delete stint: %w", err)
	}
	return nil
}

// TotalFarmingTime sums the stored stint durations for one session. Stored
// values are milliseconds; the aggregate is reported in seconds.
func (s *StintService) TotalFarmingTime(ctx context.Context, sessionID, userID string) (*model.TotalFarmingTime, error) {
	stints, err := s.stints.FindBySessionAndUser(ctx, sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("list stints: %w", err)
	}

	var totalMs int64
	for _, stint := range stints {
		totalMs += stint.DurationMs
	}

	return &model.TotalFarmingTime{
		TotalDurationSeconds: float64(totalMs) / 1000,
		StintCount:           len(stints),
	}, nil
}
