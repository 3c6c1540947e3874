package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

// TestConfig holds settings for integration tests that need a real database.
type TestConfig struct {
	PostgresDSN string `env:"TEST_POSTGRES_DSN"`
}

var errNoTestPostgres = errors.New("TEST_POSTGRES_DSN is not set")

func LoadTest() (TestConfig, error) {
	var cfg TestConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	if cfg.PostgresDSN == "" {
		return cfg, errNoTestPostgres
	}
	return cfg, nil
}
