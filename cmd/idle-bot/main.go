package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	appaccount "neon-tycoon/internal/app/account"
	"neon-tycoon/internal/config"
	"neon-tycoon/internal/game"
	"neon-tycoon/internal/game/viewmodel"
	"neon-tycoon/internal/logging"
	httptransport "neon-tycoon/internal/transport/http"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logCfg.Service = "idle-bot"
	logging.Init(logCfg)
	cfg, err := config.LoadBot()
	if err != nil {
		log.Fatal().Err(err).Msg("load bot config failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := newBot(cfg, &http.Client{Timeout: 10 * time.Second})
	if err := b.login(ctx); err != nil {
		log.Fatal().Err(err).Msg("login failed")
	}
	log.Info().Str("username", cfg.Username).Str("base_url", cfg.BaseURL).Msg("bot playing")

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = b.post(context.Background(), "/api/accounts/logout", nil, nil)
			return
		case <-ticker.C:
			if err := b.step(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Warn().Err(err).Msg("bot step failed")
			}
		}
	}
}

type move struct {
	Kind      string
	UpgradeID string
	Bet       float64
}

const (
	moveClick     = "click"
	moveBuy       = "buy"
	moveRebirth   = "rebirth"
	moveBlackjack = "blackjack"
)

// decide prefers rebirth, then the cheapest affordable upgrade, then a
// blackjack hand when betting is enabled, and clicks otherwise.
func decide(st viewmodel.PlayerStateView, betShare float64) move {
	if st.Rebirth.Affordable {
		return move{Kind: moveRebirth}
	}
	var best *viewmodel.UpgradeView
	for i := range st.Upgrades {
		u := &st.Upgrades[i]
		if !u.Affordable {
			continue
		}
		if best == nil || u.Cost < best.Cost {
			best = u
		}
	}
	if best != nil {
		return move{Kind: moveBuy, UpgradeID: best.ID}
	}
	if betShare > 0 && st.Money >= 1 && st.Blackjack.Phase != game.PhasePlayerTurn {
		return move{Kind: moveBlackjack, Bet: st.Money * min(betShare, 1)}
	}
	return move{Kind: moveClick}
}

type bot struct {
	cfg   config.BotConfig
	http  *http.Client
	token string
}

func newBot(cfg config.BotConfig, client *http.Client) *bot {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &bot{cfg: cfg, http: client}
}

// login signs in, registering the account on first run.
func (b *bot) login(ctx context.Context) error {
	creds := appaccount.Credentials{Username: b.cfg.Username, Password: b.cfg.Password}
	var resp appaccount.LoginResponse
	err := b.post(ctx, "/api/accounts/login", creds, &resp)
	var se *statusError
	if errors.As(err, &se) && se.status == http.StatusUnauthorized {
		err = b.post(ctx, "/api/accounts/register", creds, &resp)
	}
	if err != nil {
		return err
	}
	b.token = resp.Token
	return nil
}

func (b *bot) step(ctx context.Context) error {
	var st viewmodel.PlayerStateView
	if err := b.get(ctx, "/api/game/state", &st); err != nil {
		return err
	}
	if st.Blackjack.Phase == game.PhasePlayerTurn {
		return b.playHand(ctx, st.Blackjack)
	}
	m := decide(st, b.cfg.BetShare)
	switch m.Kind {
	case moveRebirth:
		log.Info().Int("rebirths", st.Rebirths+1).Msg("rebirth")
		return b.post(ctx, "/api/game/rebirth", nil, nil)
	case moveBuy:
		return b.post(ctx, "/api/game/upgrades/"+m.UpgradeID+"/buy", nil, nil)
	case moveBlackjack:
		var resp httptransport.BlackjackResponse
		if err := b.post(ctx, "/api/game/blackjack/deal", map[string]float64{"bet": m.Bet}, &resp); err != nil {
			return err
		}
		return b.playHand(ctx, resp.Round)
	default:
		return b.post(ctx, "/api/game/click", nil, nil)
	}
}

// playHand hits below 17 like the dealer does.
func (b *bot) playHand(ctx context.Context, round game.Snapshot) error {
	for round.Phase == game.PhasePlayerTurn {
		path := "/api/game/blackjack/stand"
		if round.PlayerValue < game.DealerStandsOn {
			path = "/api/game/blackjack/hit"
		}
		var resp httptransport.BlackjackResponse
		if err := b.post(ctx, path, nil, &resp); err != nil {
			return err
		}
		round = resp.Round
	}
	log.Info().Str("result", string(round.Result)).Float64("bet", round.Bet).Float64("payout", round.Payout).Msg("hand settled")
	return nil
}

type statusError struct {
	status int
	code   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.status, e.code)
}

func (b *bot) get(ctx context.Context, path string, out any) error {
	return b.do(ctx, http.MethodGet, path, nil, out)
}

func (b *bot) post(ctx context.Context, path string, body, out any) error {
	return b.do(ctx, http.MethodPost, path, body, out)
}

func (b *bot) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, b.cfg.BaseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &statusError{status: resp.StatusCode, code: e.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
