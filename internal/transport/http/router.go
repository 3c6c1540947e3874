package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	appaccount "neon-tycoon/internal/app/account"
	appadmin "neon-tycoon/internal/app/admin"
	apppublic "neon-tycoon/internal/app/public"
	"neon-tycoon/internal/config"
	"neon-tycoon/internal/mcpserver"
	"neon-tycoon/internal/session"
	"neon-tycoon/internal/store"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Deps are the services the router exposes.
type Deps struct {
	Repo     store.Repository
	Sessions *session.Manager
	Accounts *appaccount.Service
	Public   *apppublic.Service
	Admin    *appadmin.Service
}

func NewRouter(deps Deps, cfg config.ServerConfig) *chi.Mux {
	mcpSrv := mcpserver.New(deps.Sessions, deps.Public)

	accountHandlers := NewAccountHandlers(deps.Accounts)
	gameHandlers := NewGameHandlers(deps.Sessions.Engine())
	publicHandlers := NewPublicHandlers(deps.Public)
	adminHandlers := NewAdminHandlers(deps.Repo, deps.Admin)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", adminHandlers.Health())
	r.With(APILogMiddleware()).MethodFunc(http.MethodOptions, "/mcp", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Allow", "POST, GET, DELETE, OPTIONS")
		w.WriteHeader(http.StatusNoContent)
	})
	r.With(APILogMiddleware()).Method(http.MethodPost, "/mcp", mcpSrv.Handler())
	r.With(APILogMiddleware()).Method(http.MethodGet, "/mcp", mcpSrv.Handler())
	r.With(APILogMiddleware()).Method(http.MethodDelete, "/mcp", mcpSrv.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.With(BodyCaptureMiddleware(1024)).Post("/accounts/register", accountHandlers.Register())
		r.With(BodyCaptureMiddleware(1024)).Post("/accounts/login", accountHandlers.Login())

		r.Get("/public/catalog", publicHandlers.Catalog())
		r.Get("/public/leaderboard", publicHandlers.Leaderboard())
		r.Get("/public/profile/{username}", publicHandlers.Profile())
		r.Get("/public/market", publicHandlers.Market())

		r.Group(func(r chi.Router) {
			r.Use(SessionAuthMiddleware(deps.Sessions))
			r.Post("/accounts/logout", accountHandlers.Logout())
			r.Get("/game/state", gameHandlers.State())
			r.Post("/game/click", gameHandlers.Click())
			r.Post("/game/upgrades/{id}/buy", gameHandlers.BuyUpgrade())
			r.Post("/game/rebirth", gameHandlers.Rebirth())
			r.Put("/game/company", gameHandlers.RenameCompany())
			r.Post("/game/blackjack/deal", gameHandlers.BlackjackDeal())
			r.Post("/game/blackjack/hit", gameHandlers.BlackjackHit())
			r.Post("/game/blackjack/stand", gameHandlers.BlackjackStand())
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminAPIKey, deps.Sessions))
			r.Get("/players", adminHandlers.Players())
			r.With(BodyCaptureMiddleware(4096)).Post("/players/{username}/actions", adminHandlers.Action())
			r.Get("/debug/vars", expvar.Handler().ServeHTTP)
		})
	})
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
