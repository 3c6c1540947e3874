package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"neon-tycoon/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestInitWritesToFileWithService(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tycoon.log")
	Init(config.LogConfig{Level: "debug", File: path, MaxMB: 1, Service: "tycoon-test"})
	t.Cleanup(func() {
		_ = Close()
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})

	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Fatalf("level = %v, want debug", zerolog.GlobalLevel())
	}
	log.Info().Str("username", "alice").Msg("hello")
	if _, err := Writer().Write([]byte("{\"raw\":true}\n")); err != nil {
		t.Fatalf("write raw: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(b)
	for _, want := range []string{`"service":"tycoon-test"`, `"username":"alice"`, `"raw":true`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log missing %s: %s", want, out)
		}
	}
}

func TestInitIgnoresBadLevel(t *testing.T) {
	Init(config.LogConfig{Level: "loud"})
	t.Cleanup(func() { _ = Close() })
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Fatalf("level = %v, want info", zerolog.GlobalLevel())
	}
}
