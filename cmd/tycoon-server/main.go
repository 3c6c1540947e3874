package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appaccount "neon-tycoon/internal/app/account"
	appadmin "neon-tycoon/internal/app/admin"
	apppublic "neon-tycoon/internal/app/public"
	"neon-tycoon/internal/config"
	"neon-tycoon/internal/events"
	"neon-tycoon/internal/logging"
	"neon-tycoon/internal/market"
	"neon-tycoon/internal/narrator"
	"neon-tycoon/internal/progression"
	"neon-tycoon/internal/session"
	"neon-tycoon/internal/store"
	httptransport "neon-tycoon/internal/transport/http"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.Log)
	defer logging.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := newServer(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("server init failed")
	}
	httptransport.LogRoutes(srv.router)
	if err := srv.run(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
}

type server struct {
	cfg     config.AppConfig
	repo    store.Repository
	mgr     *session.Manager
	rotator *market.Rotator
	router  *chi.Mux
	closers []func()
}

func newServer(ctx context.Context, cfg config.AppConfig) (*server, error) {
	s := &server{cfg: cfg}

	repo, err := store.Open(ctx, store.Options{
		Driver:      cfg.Server.StoreDriver,
		PostgresDSN: cfg.Server.PostgresDSN,
		SQLitePath:  cfg.Server.SQLitePath,
		SupabaseURL: cfg.Server.SupabaseURL,
		SupabaseKey: cfg.Server.SupabaseKey,
	})
	if err != nil {
		return nil, err
	}
	if err := repo.Ping(ctx); err != nil {
		_ = repo.Close()
		return nil, err
	}
	s.repo = repo
	log.Info().Str("driver", cfg.Server.StoreDriver).Msg("store ready")

	narr, err := s.newNarrator(ctx)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}
	pub := s.newPublisher()

	engine := progression.NewEngine(nil, progression.Options{KeepLifetimeOnRebirth: cfg.Game.RebirthKeepLifetime})
	board := market.NewBoard()
	s.mgr = session.NewManager(session.Options{
		Engine:       engine,
		Board:        board,
		Repo:         repo,
		Publisher:    pub,
		Namer:        narr,
		TickThrottle: cfg.Game.TickThrottle,
		IdleTimeout:  cfg.Game.SessionIdleTimeout,
	})

	s.rotator = market.NewRotator(board, narr, s.mgr.TotalMoney)
	s.rotator.Timeout = cfg.Narrator.Timeout
	s.rotator.OnChange = func(ctx context.Context, ev market.Event) {
		pub.Publish(ctx, events.Event{
			Type: events.MarketShift,
			At:   ev.StartedAt,
			Data: map[string]any{"message": ev.Message, "multiplier": ev.Multiplier, "effect": string(ev.Effect)},
		})
	}
	if err := s.rotator.Register(cfg.Narrator.MarketSchedule); err != nil {
		_ = repo.Close()
		return nil, err
	}

	s.router = httptransport.NewRouter(httptransport.Deps{
		Repo:     repo,
		Sessions: s.mgr,
		Accounts: appaccount.NewService(repo, s.mgr, narr, cfg.Server.AdminUsernames),
		Public:   apppublic.NewService(repo, s.mgr).WithDefaultLimit(cfg.Game.LeaderboardLimit),
		Admin:    appadmin.NewService(repo, s.mgr, pub),
	}, cfg.Server)
	return s, nil
}

// newNarrator uses Gemini when a key is configured and always keeps the
// offline lists behind it.
func (s *server) newNarrator(ctx context.Context) (*narrator.Resilient, error) {
	fallback, err := narrator.NewFallback(nil)
	if err != nil {
		return nil, err
	}
	var primary narrator.Narrator
	if key := s.cfg.Narrator.GeminiAPIKey; key != "" {
		g, err := narrator.NewGemini(ctx, key, s.cfg.Narrator.GeminiModel)
		if err != nil {
			log.Warn().Err(err).Msg("gemini unavailable; using offline narrator")
		} else {
			primary = g
			s.closers = append(s.closers, func() { _ = g.Close() })
			log.Info().Str("model", s.cfg.Narrator.GeminiModel).Msg("gemini narrator enabled")
		}
	}
	return narrator.WithFallback(primary, fallback, s.cfg.Narrator.Timeout), nil
}

func (s *server) newPublisher() events.Publisher {
	url := s.cfg.Server.NATSURL
	if url == "" {
		return events.Nop{}
	}
	p, err := events.NewNATS(url)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("nats unavailable; events disabled")
		return events.Nop{}
	}
	s.closers = append(s.closers, p.Close)
	log.Info().Str("url", url).Msg("publishing events to nats")
	return p
}

// run serves until ctx is cancelled, then drains HTTP, stops background
// work and writes a final save.
func (s *server) run(ctx context.Context) error {
	bg, cancelBG := context.WithCancel(context.Background())
	defer cancelBG()
	s.mgr.StartAutosave(bg, s.cfg.Game.AutosaveInterval)
	s.mgr.StartJanitor(bg, s.cfg.Game.JanitorInterval)
	s.rotator.Start()

	httpSrv := &http.Server{
		Addr:              s.cfg.Server.HTTPAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.cfg.Server.HTTPAddr).Msg("http listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	cancelBG()
	s.rotator.Stop()
	if err := s.close(shutdownCtx); err != nil && serveErr == nil {
		serveErr = err
	}
	return serveErr
}

func (s *server) close(ctx context.Context) error {
	err := s.mgr.Shutdown(ctx)
	if err != nil {
		log.Error().Err(err).Msg("final save failed")
	} else {
		log.Info().Int("sessions", s.mgr.LiveCount()).Msg("final save complete")
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	if cerr := s.repo.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
