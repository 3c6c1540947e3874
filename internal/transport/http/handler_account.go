package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	appaccount "neon-tycoon/internal/app/account"
)

type AccountHandlers struct {
	svc *appaccount.Service
}

func NewAccountHandlers(svc *appaccount.Service) *AccountHandlers {
	return &AccountHandlers{svc: svc}
}

func (h *AccountHandlers) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricRegisterTotal.Add(1)
		var body appaccount.Credentials
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			metricRegisterErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		resp, err := h.svc.Register(r.Context(), body)
		if err != nil {
			metricRegisterErrors.Add(1)
			writeAccountError(w, err)
			return
		}
		writeJSON(w, resp)
	}
}

func (h *AccountHandlers) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricLoginTotal.Add(1)
		var body appaccount.Credentials
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			metricLoginErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		resp, err := h.svc.Login(r.Context(), body)
		if err != nil {
			metricLoginErrors.Add(1)
			writeAccountError(w, err)
			return
		}
		writeJSON(w, resp)
	}
}

func (h *AccountHandlers) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.svc.Logout(r.Context(), bearerToken(r)); err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "save_failed")
			return
		}
		writeJSON(w, map[string]any{"ok": true})
	}
}

func writeAccountError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appaccount.ErrInvalidRequest):
		WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
	case errors.Is(err, appaccount.ErrUsernameTaken):
		WriteHTTPError(w, http.StatusConflict, "username_taken")
	case errors.Is(err, appaccount.ErrInvalidCredentials):
		WriteHTTPError(w, http.StatusUnauthorized, "invalid_credentials")
	default:
		WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
	}
}
