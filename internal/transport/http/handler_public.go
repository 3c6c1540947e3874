package httptransport

import (
	"errors"
	"net/http"

	apppublic "neon-tycoon/internal/app/public"

	"github.com/go-chi/chi/v5"
)

type PublicHandlers struct {
	publicSvc *apppublic.Service
}

func NewPublicHandlers(publicSvc *apppublic.Service) *PublicHandlers {
	return &PublicHandlers{publicSvc: publicSvc}
}

func (h *PublicHandlers) Catalog() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, h.publicSvc.Catalog())
	}
}

func (h *PublicHandlers) Market() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, h.publicSvc.Market())
	}
}

func (h *PublicHandlers) Leaderboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sortBy := r.URL.Query().Get("sort")
		if sortBy != "" && !isAllowedLeaderboardSort(sortBy) {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		limit, ok := ParseLimit(r)
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		resp, err := h.publicSvc.Leaderboard(r.Context(), sortBy, limit)
		if err != nil {
			writePublicError(w, err)
			return
		}
		writeJSON(w, resp)
	}
}

func (h *PublicHandlers) Profile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.publicSvc.Profile(r.Context(), chi.URLParam(r, "username"))
		if err != nil {
			writePublicError(w, err)
			return
		}
		writeJSON(w, resp)
	}
}

func isAllowedLeaderboardSort(v string) bool {
	switch v {
	case apppublic.SortMoney, apppublic.SortRebirths, apppublic.SortClicks, apppublic.SortWins:
		return true
	}
	return false
}

func writePublicError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apppublic.ErrInvalidRequest):
		WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
	case errors.Is(err, apppublic.ErrPlayerNotFound):
		WriteHTTPError(w, http.StatusNotFound, "not_found")
	default:
		WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
	}
}
