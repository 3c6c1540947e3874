package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	appadmin "neon-tycoon/internal/app/admin"
	"neon-tycoon/internal/store"

	"github.com/go-chi/chi/v5"
)

type AdminHandlers struct {
	repo     store.Repository
	adminSvc *appadmin.Service
}

func NewAdminHandlers(repo store.Repository, adminSvc *appadmin.Service) *AdminHandlers {
	return &AdminHandlers{repo: repo, adminSvc: adminSvc}
}

func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.repo.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "db": "down"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": "up"})
	}
}

func (h *AdminHandlers) Players() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.adminSvc.Players(r.Context())
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, resp)
	}
}

func (h *AdminHandlers) Action() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricAdminActionTotal.Add(1)
		var body appadmin.ActionInput
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			metricAdminActionErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		resp, err := h.adminSvc.Apply(r.Context(), chi.URLParam(r, "username"), body)
		if err != nil {
			metricAdminActionErrors.Add(1)
			switch {
			case errors.Is(err, appadmin.ErrInvalidRequest):
				WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			case errors.Is(err, appadmin.ErrUnknownUpgrade):
				WriteHTTPError(w, http.StatusBadRequest, "unknown_upgrade")
			case errors.Is(err, appadmin.ErrPlayerNotFound):
				WriteHTTPError(w, http.StatusNotFound, "not_found")
			default:
				WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			}
			return
		}
		writeJSON(w, resp)
	}
}
