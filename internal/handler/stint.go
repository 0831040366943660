package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/poefarm/tracker-server-go/internal/middleware"
	"github.com/poefarm/tracker-server-go/internal/service"
)

type StintHandler struct {
	stints *service.StintService
}

func NewStintHandler(stints *service.StintService) *StintHandler {
	return &StintHandler{stints: stints}
}

func (h *StintHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Delete("/{id}", h.Delete)

	return r
}

// DELETE /v1/stints/{id}
func (h *StintHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.stints.Delete(r.Context(), id, userID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
