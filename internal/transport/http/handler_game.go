package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"neon-tycoon/internal/game"
	"neon-tycoon/internal/game/viewmodel"
	"neon-tycoon/internal/progression"
	"neon-tycoon/internal/session"

	"github.com/go-chi/chi/v5"
)

type GameHandlers struct {
	engine *progression.Engine
}

func NewGameHandlers(engine *progression.Engine) *GameHandlers {
	return &GameHandlers{engine: engine}
}

type ActionResponse struct {
	Applied bool                      `json:"applied"`
	Earned  float64                   `json:"earned,omitempty"`
	State   viewmodel.PlayerStateView `json:"state"`
}

type BlackjackResponse struct {
	Round game.Snapshot             `json:"round"`
	State viewmodel.PlayerStateView `json:"state"`
}

// sessionHandler unwraps the session placed by SessionAuthMiddleware.
func sessionHandler(fn func(w http.ResponseWriter, r *http.Request, s *session.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := SessionFromContext(r.Context())
		if !ok {
			WriteHTTPError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		metricGameActionTotal.Add(1)
		fn(w, r, s)
	}
}

func (h *GameHandlers) view(snap session.Snapshot) viewmodel.PlayerStateView {
	return viewmodel.BuildPlayerState(h.engine, snap)
}

func (h *GameHandlers) State() http.HandlerFunc {
	return sessionHandler(func(w http.ResponseWriter, _ *http.Request, s *session.Session) {
		writeJSON(w, h.view(s.Snapshot()))
	})
}

func (h *GameHandlers) Click() http.HandlerFunc {
	return sessionHandler(func(w http.ResponseWriter, _ *http.Request, s *session.Session) {
		earned, snap := s.Click()
		writeJSON(w, ActionResponse{Applied: true, Earned: earned, State: h.view(snap)})
	})
}

func (h *GameHandlers) BuyUpgrade() http.HandlerFunc {
	return sessionHandler(func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		// Unknown ids are rejected like any other unaffordable purchase.
		applied, snap := s.BuyUpgrade(r.Context(), chi.URLParam(r, "id"))
		writeJSON(w, ActionResponse{Applied: applied, State: h.view(snap)})
	})
}

func (h *GameHandlers) Rebirth() http.HandlerFunc {
	return sessionHandler(func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		applied, snap := s.Rebirth(r.Context())
		writeJSON(w, ActionResponse{Applied: applied, State: h.view(snap)})
	})
}

func (h *GameHandlers) RenameCompany() http.HandlerFunc {
	return sessionHandler(func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		var body struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			metricGameActionErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if strings.TrimSpace(body.Name) == "" {
			metricGameActionErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		applied, snap := s.Rename(body.Name)
		writeJSON(w, ActionResponse{Applied: applied, State: h.view(snap)})
	})
}

func (h *GameHandlers) BlackjackDeal() http.HandlerFunc {
	return sessionHandler(func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		var body struct {
			Bet float64 `json:"bet"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			metricGameActionErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		round, err := s.BlackjackDeal(r.Context(), body.Bet)
		h.writeBlackjack(w, s, round, err)
	})
}

func (h *GameHandlers) BlackjackHit() http.HandlerFunc {
	return sessionHandler(func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		round, err := s.BlackjackHit(r.Context())
		h.writeBlackjack(w, s, round, err)
	})
}

func (h *GameHandlers) BlackjackStand() http.HandlerFunc {
	return sessionHandler(func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		round, err := s.BlackjackStand(r.Context())
		h.writeBlackjack(w, s, round, err)
	})
}

func (h *GameHandlers) writeBlackjack(w http.ResponseWriter, s *session.Session, round game.Snapshot, err error) {
	if err != nil {
		metricGameActionErrors.Add(1)
		switch {
		case errors.Is(err, game.ErrInvalidBet):
			WriteHTTPError(w, http.StatusBadRequest, "invalid_bet")
		case errors.Is(err, game.ErrInvalidAction):
			WriteHTTPError(w, http.StatusBadRequest, "invalid_action")
		case errors.Is(err, game.ErrDeckEmpty):
			WriteHTTPError(w, http.StatusConflict, "deck_empty")
		default:
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
		}
		return
	}
	writeJSON(w, BlackjackResponse{Round: round, State: h.view(s.Snapshot())})
}
