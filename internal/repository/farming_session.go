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

type FarmingSessionRepository interface {
	FindByID(ctx context.Context, id string) (*model.FarmingSession, error)
	FindByUserID(ctx context.Context, userID string) ([]model.FarmingSession, error)
	Create(ctx context.Context, params model.CreateFarmingSessionParams, now time.Time) (*model.FarmingSession, error)
	UpdateNotes(ctx context.Context, id string, notes *string, now time.Time) error
	UpdateInfo(ctx context.Context, id string, params model.UpdateSessionInfoParams, now time.Time) error
	Conclude(ctx context.Context, id string, totalReturns, divCost float64, totalDurationMs int64, now time.Time) error
	Delete(ctx context.Context, id string) error
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) FarmingSessionRepository
}

// farmingSessionDB is an interface satisfied by both *sqlx.DB and *sqlx.Tx
type farmingSessionDB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type farmingSessionRepo struct {
	db farmingSessionDB
}

func NewFarmingSessionRepository(db *sqlx.DB) FarmingSessionRepository {
	return &farmingSessionRepo{db: db}
}

func (r *farmingSessionRepo) WithTx(tx *sqlx.Tx) FarmingSessionRepository {
	return &farmingSessionRepo{db: tx}
}

func (r *farmingSessionRepo) FindByID(ctx context.Context, id string) (*model.FarmingSession, error) {
	var session model.FarmingSession
	err := r.db.GetContext(ctx, &session, `
		SELECT * FROM farming_sessions WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *farmingSessionRepo) FindByUserID(ctx context.Context, userID string) ([]model.FarmingSession, error) {
	sessions := []model.FarmingSession{}
	err := r.db.SelectContext(ctx, &sessions, `
		SELECT * FROM farming_sessions WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *farmingSessionRepo) Create(ctx context.Context, params model.CreateFarmingSessionParams, now time.Time) (*model.FarmingSession, error) {
	var session model.FarmingSession
	err := r.db.GetContext(ctx, &session, `
		INSERT INTO farming_sessions (
			id, user_id, session_name, session_description, session_notes,
			is_concluded, map_name, is_random_map, is_originator, is_self_farmed,
			map_cost, number_of_maps, is_using_chisels, chisel_name, chisel_price,
			is_using_scarabs, scarabs, is_using_map_craft, map_craft_name,
			map_craft_price, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $20)
		RETURNING *
	`,
		uuid.NewString(), params.UserID, params.SessionName, params.SessionDescription, params.SessionNotes,
		params.MapName, params.IsRandomMap, params.IsOriginator, params.IsSelfFarmed,
		params.MapCost, params.NumberOfMaps, params.IsUsingChisels, params.ChiselName, params.ChiselPrice,
		params.IsUsingScarabs, params.Scarabs, params.IsUsingMapCraft, params.MapCraftName,
		params.MapCraftPrice, now,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *farmingSessionRepo) UpdateNotes(ctx context.Context, id string, notes *string, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE farming_sessions SET
			session_notes = $2,
			updated_at = $3
		WHERE id = $1
	`, id, notes, now)
	return err
}

func (r *farmingSessionRepo) UpdateInfo(ctx context.Context, id string, params model.UpdateSessionInfoParams, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE farming_sessions SET
			session_name = $2,
			session_description = $3,
			is_random_map = $4,
			map_name = $5,
			is_originator = $6,
			is_self_farmed = $7,
			map_cost = $8,
			number_of_maps = $9,
			updated_at = $10
		WHERE id = $1
	`, id, params.SessionName, params.SessionDescription, params.IsRandomMap, params.MapName,
		params.IsOriginator, params.IsSelfFarmed, params.MapCost, params.NumberOfMaps, now)
	return err
}

func (r *farmingSessionRepo) Conclude(ctx context.Context, id string, totalReturns, divCost float64, totalDurationMs int64, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE farming_sessions SET
			is_concluded = TRUE,
			total_returns = $2,
			div_cost = $3,
			total_duration_ms = $4,
			updated_at = $5
		WHERE id = $1 AND is_concluded = FALSE
	`, id, totalReturns, divCost, totalDurationMs, now)
	return err
}

func (r *farmingSessionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM farming_sessions WHERE id = $1`, id)
	return err
}
