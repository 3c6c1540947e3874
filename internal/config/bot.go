package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type BotConfig struct {
	BaseURL  string        `env:"BOT_BASE_URL" envDefault:"http://localhost:8080"`
	Username string        `env:"BOT_USERNAME" envDefault:"idle-bot"`
	Password string        `env:"BOT_PASSWORD" envDefault:"idle-bot"`
	Interval time.Duration `env:"BOT_INTERVAL" envDefault:"250ms"`
	BetShare float64       `env:"BOT_BET_SHARE" envDefault:"0"`
}

func LoadBot() (BotConfig, error) {
	var cfg BotConfig
	err := env.Parse(&cfg)
	return cfg, err
}
