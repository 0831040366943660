package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/poefarm/tracker-server-go/internal/audit"
	apperrors "github.com/poefarm/tracker-server-go/internal/errors"
	"github.com/poefarm/tracker-server-go/internal/middleware"
	"github.com/poefarm/tracker-server-go/internal/model"
	"github.com/poefarm/tracker-server-go/internal/service"
)

type SessionHandler struct {
	sessions *service.FarmingSessionService
	stints   *service.StintService
}

func NewSessionHandler(sessions *service.FarmingSessionService, stints *service.StintService) *SessionHandler {
	return &SessionHandler{sessions: sessions, stints: stints}
}

func (h *SessionHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/notes", h.UpdateNotes)
	r.Patch("/{id}/info", h.UpdateInfo)
	r.Post("/{id}/complete", h.Complete)
	r.Delete("/{id}", h.Delete)

	r.Get("/{id}/stints", h.ListStints)
	r.Post("/{id}/stints", h.CreateStint)
	r.Get("/{id}/total-time", h.TotalTime)

	return r
}

type createSessionRequest struct {
	SessionName        string            `json:"sessionName"`
	SessionDescription string            `json:"sessionDescription"`
	SessionNotes       *string           `json:"sessionNotes"`
	MapName            *string           `json:"mapName"`
	IsRandomMap        bool              `json:"isRandomMap"`
	IsOriginator       bool              `json:"isOriginator"`
	IsSelfFarmed       bool              `json:"isSelfFarmed"`
	MapCost            *float64          `json:"mapCost"`
	NumberOfMaps       float64           `json:"numberOfMaps"`
	IsUsingChisels     bool              `json:"isUsingChisels"`
	ChiselName         *model.ChiselName `json:"chiselName"`
	ChiselPrice        *float64          `json:"chiselPrice"`
	IsUsingScarabs     bool              `json:"isUsingScarabs"`
	Scarabs            model.ScarabList  `json:"scarabs"`
	IsUsingMapCraft    bool              `json:"isUsingMapCraft"`
	MapCraftName       *string           `json:"mapCraftName"`
	MapCraftPrice      *float64          `json:"mapCraftPrice"`
}

// POST /v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	session, err := h.sessions.Create(r.Context(), model.CreateFarmingSessionParams{
		UserID:             userID,
		SessionName:        req.SessionName,
		SessionDescription: req.SessionDescription,
		SessionNotes:       req.SessionNotes,
		MapName:            req.MapName,
		IsRandomMap:        req.IsRandomMap,
		IsOriginator:       req.IsOriginator,
		IsSelfFarmed:       req.IsSelfFarmed,
		MapCost:            req.MapCost,
		NumberOfMaps:       req.NumberOfMaps,
		IsUsingChisels:     req.IsUsingChisels,
		ChiselName:         req.ChiselName,
		ChiselPrice:        req.ChiselPrice,
		IsUsingScarabs:     req.IsUsingScarabs,
		Scarabs:            req.Scarabs,
		IsUsingMapCraft:    req.IsUsingMapCraft,
		MapCraftName:       req.MapCraftName,
		MapCraftPrice:      req.MapCraftPrice,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// GET /v1/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	sessions, err := h.sessions.ListByUser(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list sessions")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

// GET /v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")

	session, err := h.sessions.GetByIDForUser(r.Context(), id, userID)
	if err != nil {
		log.Error().Err(err).Str("sessionId", id).Msg("failed to get session")
		writeError(w, err)
		return
	}
	if session == nil {
		writeError(w, apperrors.NotFound("Session"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session":   session,
		"totalCost": h.sessions.TotalCost(session),
	})
}

// PATCH /v1/sessions/{id}/notes
func (h *SessionHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")

	var req struct {
		SessionNotes *string `json:"sessionNotes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	if err := h.sessions.UpdateNotes(r.Context(), id, userID, req.SessionNotes); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type updateSessionInfoRequest struct {
	SessionName        string   `json:"sessionName"`
	SessionDescription string   `json:"sessionDescription"`
	MapName            *string  `json:"mapName"`
	IsRandomMap        bool     `json:"isRandomMap"`
	IsOriginator       bool     `json:"isOriginator"`
	IsSelfFarmed       bool     `json:"isSelfFarmed"`
	MapCost            *float64 `json:"mapCost"`
	NumberOfMaps       float64  `json:"numberOfMaps"`
}

// PATCH /v1/sessions/{id}/info
func (h *SessionHandler) UpdateInfo(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")

	var req updateSessionInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	err := h.sessions.UpdateInfo(r.Context(), id, userID, model.UpdateSessionInfoParams{
		SessionName:        req.SessionName,
		SessionDescription: req.SessionDescription,
		MapName:            req.MapName,
		IsRandomMap:        req.IsRandomMap,
		IsOriginator:       req.IsOriginator,
		IsSelfFarmed:       req.IsSelfFarmed,
		MapCost:            req.MapCost,
		NumberOfMaps:       req.NumberOfMaps,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// POST /v1/sessions/{id}/complete
func (h *SessionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")

	var req struct {
		TotalReturns float64 `json:"totalReturns"`
		DivCost      float64 `json:"divCost"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	if err := h.sessions.Complete(r.Context(), id, userID, req.TotalReturns, req.DivCost); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DELETE /v1/sessions/{id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.sessions.Delete(r.Context(), id, userID); err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:    audit.EventSessionDelete,
		UserID:  userID,
		Details: map[string]interface{}{"sessionId": id},
	})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GET /v1/sessions/{id}/stints
func (h *SessionHandler) ListStints(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")

	stints, err := h.stints.ListBySession(r.Context(), id, userID)
	if err != nil {
		log.Error().Err(err).Str("sessionId", id).Msg("failed to list stints")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"stints": stints})
}

type createStintRequest struct {
	StartTime int64 `json:"startTime"`
	EndTime   int64 `json:"endTime"`
	Duration  int64 `json:"duration"`
}

// POST /v1/sessions/{id}/stints
//
// Timestamps arrive as Unix milliseconds, matching what the in-browser
// timer captures.
func (h *SessionHandler) CreateStint(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")

	var req createStintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	stint, err := h.stints.Create(r.Context(), model.CreateStintParams{
		SessionID:  id,
		UserID:     userID,
		StartTime:  unixMilli(req.StartTime),
		EndTime:    unixMilli(req.EndTime),
		DurationMs: req.Duration,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, stint)
}

// GET /v1/sessions/{id}/total-time
func (h *SessionHandler) TotalTime(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")

	total, err := h.stints.TotalFarmingTime(r.Context(), id, userID)
	if err != nil {
		log.Error().Err(err).Str("sessionId", id).Msg("failed to total farming time")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, total)
}
