package service

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/poefarm/tracker-server-go/internal/cost"
	"github.com/poefarm/tracker-server-go/internal/database"
	apperrors "github.com/poefarm/tracker-server-go/internal/errors"
	"github.com/poefarm/tracker-server-go/internal/metrics"
	"github.com/poefarm/tracker-server-go/internal/model"
	"github.com/poefarm/tracker-server-go/internal/repository"
	"github.com/poefarm/tracker-server-go/internal/validation"
)

// TxRunner runs a function inside a database transaction. *database.DB
// satisfies it.
type TxRunner interface {
	WithTx(ctx context.Context, fn database.TxFunc) error
}

var _ TxRunner = (*database.DB)(nil)

type FarmingSessionService struct {
	tx        TxRunner
	sessions  repository.FarmingSessionRepository
	stints    repository.StintRepository
	validator *validation.Validator
	now       Clock
}

func NewFarmingSessionService(
	tx TxRunner,
	sessions repository.FarmingSessionRepository,
	stints repository.StintRepository,
	validator *validation.Validator,
	now Clock,
) *FarmingSessionService {
	return &FarmingSessionService{
		tx:        tx,
		sessions:  sessions,
		stints:    stints,
		validator: validator,
		now:       now,
	}
}

func (s *FarmingSessionService) Create(ctx context.Context, params model.CreateFarmingSessionParams) (*model.FarmingSession, error) {
	if err := s.validator.SessionCreate(&params); err != nil {
		return nil, err
	}

	session, err := s.sessions.Create(ctx, params, s.now())
	if err != nil {
		return nil, fmt.Errorf("create farming session: %w", err)
	}

	metrics.SessionCreated()
	log.Info().
		Str("sessionId", session.ID).
		Str("userId", session.UserID).
		Msg("farming session created")

	return session, nil
}

// GetByIDForUser returns the session only when it exists and belongs to
// userId. A foreign or missing session yields (nil, nil) so callers cannot
// probe for other users' sessions.
func (s *FarmingSessionService) GetByIDForUser(ctx context.Context, id, userID string) (*model.FarmingSession, error) {
	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find farming session: %w", err)
	}
	if session == nil || session.UserID != userID {
		return nil, nil
	}
	return session, nil
}

func (s *FarmingSessionService) ListByUser(ctx context.Context, userID string) ([]model.FarmingSession, error) {
	return s.sessions.FindByUserID(ctx, userID)
}

func (s *FarmingSessionService) UpdateNotes(ctx context.Context, id, userID string, notes *string) error {
	if _, err := s.authorize(ctx, id, userID); err != nil {
		return err
	}

	if err := s.sessions.UpdateNotes(ctx, id, notes, s.now()); err != nil {
		return fmt.Errorf("update session notes: %w", err)
	}
	return nil
}

func (s *FarmingSessionService) UpdateInfo(ctx context.Context, id, userID string, params model.UpdateSessionInfoParams) error {
	if err := s.validator.SessionInfoUpdate(&params); err != nil {
		return err
	}

	if _, err := s.authorize(ctx, id, userID); err != nil {
		return err
	}

	if err := s.sessions.UpdateInfo(ctx, id, params, s.now()); err != nil {
		return fmt.Errorf("update session info: %w", err)
	}
	return nil
}

// Complete concludes a session. The transition is one-way: a second call
// fails with AlreadyConcluded. totalDuration is recomputed from the child
// stints at this moment and then frozen on the record.
func (s *FarmingSessionService) Complete(ctx context.Context, id, userID string, totalReturns, divCost float64) error {
	if err := s.validator.SessionComplete(totalReturns, divCost); err != nil {
		return err
	}

	session, err := s.authorize(ctx, id, userID)
	if err != nil {
		return err
	}
	if session.IsConcluded {
		return apperrors.AlreadyConcluded()
	}

	stints, err := s.stints.FindBySessionAndUser(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("list stints: %w", err)
	}
	var totalDurationMs int64
	for _, stint := range stints {
		totalDurationMs += stint.DurationMs
	}

	if err := s.sessions.Conclude(ctx, id, totalReturns, divCost, totalDurationMs, s.now()); err != nil {
		return fmt.Errorf("conclude session: %w", err)
	}

	metrics.SessionConcluded()
	log.Info().
		Str("sessionId", id).
		Int64("totalDurationMs", totalDurationMs).
		Msg("farming session concluded")

	return nil
}

// Delete removes the session and all of its stints in one transaction, so
// readers never observe a session with half its stints gone.
func (s *FarmingSessionService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.authorize(ctx, id, userID); err != nil {
		return err
	}

	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.stints.WithTx(tx).DeleteBySessionID(ctx, id); err != nil {
			return fmt.Errorf("delete session stints: %w", err)
		}
		if err := s.sessions.WithTx(tx).Delete(ctx, id); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().Str("sessionId", id).Str("userId", userID).Msg("farming session deleted")
	return nil
}

// TotalCost derives the session's cost from its current configuration.
func (s *FarmingSessionService) TotalCost(session *model.FarmingSession) float64 {
	in := cost.Input{
		IsSelfFarmed:    session.IsSelfFarmed,
		NumberOfMaps:    session.NumberOfMaps,
		IsUsingChisels:  session.IsUsingChisels,
		IsUsingScarabs:  session.IsUsingScarabs,
		IsUsingMapCraft: session.IsUsingMapCraft,
	}
	if session.MapCost != nil {
		in.MapCost = *session.MapCost
	}
	if session.ChiselPrice != nil {
		in.ChiselPrice = *session.ChiselPrice
	}
	if session.MapCraftPrice != nil {
		in.MapCraftPrice = *session.MapCraftPrice
	}
	for _, scarab := range session.Scarabs {
		in.Scarabs = append(in.Scarabs, cost.ScarabInput{Price: scarab.Price, Quantity: scarab.Quantity})
	}
	return cost.Total(in)
}

// authorize loads the session and checks ownership. Mutating operations
// distinguish NotFound from Unauthorized, unlike the read path.
func (s *FarmingSessionService) authorize(ctx context.Context, id, userID string) (*model.FarmingSession, error) {
	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find farming session: %w", err)
	}
	if session == nil {
		return nil, apperrors.NotFound("Session")
	}
	if session.UserID != userID {
		return nil, apperrors.Unauthorized("You can only modify your own sessions")
	}
	return session, nil
}
