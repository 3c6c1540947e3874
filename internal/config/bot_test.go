package config

import (
	"testing"
	"time"
)

func TestLoadBotDefaults(t *testing.T) {
	cfg, err := LoadBot()
	if err != nil {
		t.Fatalf("LoadBot() error = %v", err)
	}
	if cfg.BaseURL != "http://localhost:8080" {
		t.Fatalf("BaseURL = %q, want http://localhost:8080", cfg.BaseURL)
	}
	if cfg.Username != "idle-bot" || cfg.Interval != 250*time.Millisecond {
		t.Fatalf("unexpected bot config: %+v", cfg)
	}
}

func TestLoadBotOverrides(t *testing.T) {
	t.Setenv("BOT_BASE_URL", "http://127.0.0.1:9000")
	t.Setenv("BOT_USERNAME", "BotA")
	t.Setenv("BOT_INTERVAL", "2s")
	t.Setenv("BOT_BET_SHARE", "0.1")

	cfg, err := LoadBot()
	if err != nil {
		t.Fatalf("LoadBot() error = %v", err)
	}
	if cfg.BaseURL != "http://127.0.0.1:9000" {
		t.Fatalf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Username != "BotA" || cfg.Interval != 2*time.Second || cfg.BetShare != 0.1 {
		t.Fatalf("unexpected bot config: %+v", cfg)
	}
}
