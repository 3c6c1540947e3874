package config

import (
	"testing"
	"time"
)

func TestLoadServerDefaults(t *testing.T) {
	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.StoreDriver != StoreMemory {
		t.Fatalf("StoreDriver = %q, want memory", cfg.StoreDriver)
	}
}

func TestLoadServerValidatesDriver(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		ok   bool
	}{
		{"postgres without dsn", map[string]string{"STORE_DRIVER": "postgres"}, false},
		{"postgres with dsn", map[string]string{"STORE_DRIVER": "postgres", "POSTGRES_DSN": "postgres://localhost:5432/tycoon"}, true},
		{"supabase without key", map[string]string{"STORE_DRIVER": "supabase", "SUPABASE_URL": "https://x.supabase.co"}, false},
		{"sqlite default path", map[string]string{"STORE_DRIVER": "sqlite"}, true},
		{"unknown driver", map[string]string{"STORE_DRIVER": "mongo"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := LoadServer()
			if tc.ok && err != nil {
				t.Fatalf("LoadServer() error = %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("LoadServer() expected error, got nil")
			}
		})
	}
}

func TestLoadServerAdminUsernames(t *testing.T) {
	t.Setenv("ADMIN_USERNAMES", "root,ops")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if len(cfg.AdminUsernames) != 2 || cfg.AdminUsernames[1] != "ops" {
		t.Fatalf("AdminUsernames = %v", cfg.AdminUsernames)
	}
}

func TestLoadGameAndNarrator(t *testing.T) {
	t.Setenv("REBIRTH_KEEP_LIFETIME", "true")
	t.Setenv("AUTOSAVE_INTERVAL", "5s")
	t.Setenv("MARKET_SCHEDULE", "@every 1m")

	app, err := LoadApp()
	if err != nil {
		t.Fatalf("LoadApp() error = %v", err)
	}
	if !app.Game.RebirthKeepLifetime || app.Game.AutosaveInterval != 5*time.Second {
		t.Fatalf("unexpected game config: %+v", app.Game)
	}
	if app.Game.TickThrottle != 100*time.Millisecond {
		t.Fatalf("TickThrottle = %v", app.Game.TickThrottle)
	}
	if app.Narrator.MarketSchedule != "@every 1m" || app.Narrator.Timeout != 10*time.Second {
		t.Fatalf("unexpected narrator config: %+v", app.Narrator)
	}
}
