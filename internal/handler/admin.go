package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/poefarm/tracker-server-go/internal/audit"
	apperrors "github.com/poefarm/tracker-server-go/internal/errors"
	"github.com/poefarm/tracker-server-go/internal/middleware"
	"github.com/poefarm/tracker-server-go/internal/model"
	"github.com/poefarm/tracker-server-go/internal/sanitize"
	"github.com/poefarm/tracker-server-go/internal/service"
)

type AdminHandler struct {
	admin        *service.AdminService
	contact      *service.ContactService
	settings     *service.SettingsService
	sessionMw    *middleware.AdminSessionMiddleware
	loginLimiter *middleware.LoginRateLimiter
	isProduction bool
}

func NewAdminHandler(
	admin *service.AdminService,
	contact *service.ContactService,
	settings *service.SettingsService,
	sessionMw *middleware.AdminSessionMiddleware,
	isProduction bool,
) *AdminHandler {
	return &AdminHandler{
		admin:        admin,
		contact:      contact,
		settings:     settings,
		sessionMw:    sessionMw,
		loginLimiter: middleware.NewLoginRateLimiter(),
		isProduction: isProduction,
	}
}

func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(h.loginLimiter.Handler)
		r.Post("/login", h.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.sessionMw.Handler)
		r.Post("/logout", h.Logout)
		r.Get("/messages", h.ListMessages)
		r.Get("/messages/new-count", h.NewMessageCount)
		r.Patch("/messages/{id}/status", h.UpdateMessageStatus)
		r.Get("/settings", h.GetSettings)
	})

	return r
}

// POST /admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, apperrors.Unauthorized("Unauthorized"))
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	token, err := h.admin.Login(r.Context(), userID, req.Password)
	if err != nil {
		audit.LogFromRequest(r, audit.Event{Type: audit.EventLoginFailure, UserID: userID})
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventLoginSuccess, UserID: userID})
	middleware.SetSessionCookie(w, middleware.AdminSessionCookie, token, "/admin", h.isProduction)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// POST /admin/logout
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetAdminSession(r.Context())

	if cookie, err := r.Cookie(middleware.AdminSessionCookie); err == nil && cookie.Value != "" {
		if err := h.admin.Logout(r.Context(), cookie.Value); err != nil {
			log.Error().Err(err).Msg("failed to delete admin session")
		}
	}

	if session != nil {
		audit.LogFromRequest(r, audit.Event{Type: audit.EventLogout, UserID: session.UserID})
	}
	middleware.ClearSessionCookie(w, middleware.AdminSessionCookie, "/admin")
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type adminMessage struct {
	model.ContactMessage
	MessageHTML string `json:"messageHtml"`
}

func renderMessages(messages []model.ContactMessage) []adminMessage {
	out := make([]adminMessage, 0, len(messages))
	for _, msg := range messages {
		out = append(out, adminMessage{
			ContactMessage: msg,
			MessageHTML:    sanitize.LinkifyAndSanitize(msg.Message),
		})
	}
	return out
}

// GET /admin/messages?status=
func (h *AdminHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	var messages []model.ContactMessage
	var err error

	if status := r.URL.Query().Get("status"); status != "" {
		messages, err = h.contact.ListByStatus(r.Context(), model.ContactMessageStatus(status))
	} else {
		messages, err = h.contact.ListAll(r.Context())
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to list messages")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"messages": renderMessages(messages)})
}

// GET /admin/messages/new-count?since=
//
// Without a since parameter the count falls back to messages still pending
// triage. With one, every message created after it counts, whatever its
// status.
func (h *AdminHandler) NewMessageCount(w http.ResponseWriter, r *http.Request) {
	var since *time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, apperrors.InvalidInput("since", "must be an RFC3339 timestamp"))
			return
		}
		since = &t
	}

	count, err := h.contact.CountNew(r.Context(), since)
	if err != nil {
		log.Error().Err(err).Msg("failed to count new messages")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// PATCH /admin/messages/{id}/status
func (h *AdminHandler) UpdateMessageStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Status model.ContactMessageStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	msg, err := h.contact.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	if session := middleware.GetAdminSession(r.Context()); session != nil {
		audit.LogFromRequest(r, audit.Event{
			Type:   audit.EventMessageStatusChange,
			UserID: session.UserID,
			Details: map[string]interface{}{
				"messageId": id,
				"status":    string(req.Status),
			},
		})
	}

	writeJSON(w, http.StatusOK, adminMessage{
		ContactMessage: *msg,
		MessageHTML:    sanitize.LinkifyAndSanitize(msg.Message),
	})
}

// GET /admin/settings
func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetAdminSession(r.Context())
	if session == nil {
		writeError(w, apperrors.Unauthorized("Unauthorized"))
		return
	}

	settings, err := h.settings.GetSettings(r.Context(), session.UserID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get settings")
		writeError(w, err)
		return
	}
	if settings == nil {
		writeError(w, apperrors.NotFound("Settings"))
		return
	}

	writeJSON(w, http.StatusOK, settings)
}
