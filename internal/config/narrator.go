package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type NarratorConfig struct {
	GeminiAPIKey   string        `env:"GEMINI_API_KEY"`
	GeminiModel    string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	Timeout        time.Duration `env:"NARRATOR_TIMEOUT" envDefault:"10s"`
	MarketSchedule string        `env:"MARKET_SCHEDULE" envDefault:"@every 45s"`
}

func LoadNarrator() (NarratorConfig, error) {
	var cfg NarratorConfig
	err := env.Parse(&cfg)
	return cfg, err
}
