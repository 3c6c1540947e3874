package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sort"
	"testing"

	"neon-tycoon/internal/config"

	"github.com/go-chi/chi/v5"
)

func testConfig(t *testing.T) config.AppConfig {
	t.Helper()
	t.Setenv("HTTP_ADDR", "127.0.0.1:0")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("NATS_URL", "")
	t.Setenv("ADMIN_API_KEY", "admin-key")
	cfg, err := config.LoadApp()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func TestRouteSnapshot(t *testing.T) {
	srv, err := newServer(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	var routes []string
	err = chi.Walk(srv.router, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, method+" "+route)
		return nil
	})
	if err != nil {
		t.Fatalf("walk routes: %v", err)
	}
	sort.Strings(routes)

	expected := []string{
		"DELETE /mcp",
		"GET /api/admin/debug/vars",
		"GET /api/admin/players",
		"GET /api/game/state",
		"GET /api/public/catalog",
		"GET /api/public/leaderboard",
		"GET /api/public/market",
		"GET /api/public/profile/{username}",
		"GET /healthz",
		"GET /mcp",
		"OPTIONS /mcp",
		"POST /api/accounts/login",
		"POST /api/accounts/logout",
		"POST /api/accounts/register",
		"POST /api/admin/players/{username}/actions",
		"POST /api/game/blackjack/deal",
		"POST /api/game/blackjack/hit",
		"POST /api/game/blackjack/stand",
		"POST /api/game/click",
		"POST /api/game/rebirth",
		"POST /api/game/upgrades/{id}/buy",
		"POST /mcp",
		"PUT /api/game/company",
	}
	sort.Strings(expected)
	if !reflect.DeepEqual(routes, expected) {
		t.Fatalf("route snapshot mismatch\n got: %v\nwant: %v", routes, expected)
	}
}

func TestRunSavesOnShutdown(t *testing.T) {
	srv, err := newServer(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	body, _ := json.Marshal(map[string]string{"username": "alice", "password": "pw"})
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/accounts/register", bytes.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("register status=%d body=%s", w.Code, w.Body.String())
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &login); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/game/click", nil)
		req.Header.Set("Authorization", "Bearer "+login.Token)
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("click status=%d", w.Code)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := srv.run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}

	acct, err := srv.repo.Load(context.Background(), "alice")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if acct.Progress.ManualClicks != 3 || acct.Progress.Money != 3 {
		t.Fatalf("final save missing progress: %+v", acct.Progress)
	}
}
