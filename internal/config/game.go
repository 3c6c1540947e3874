package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type GameConfig struct {
	RebirthKeepLifetime bool          `env:"REBIRTH_KEEP_LIFETIME" envDefault:"false"`
	TickThrottle        time.Duration `env:"TICK_THROTTLE" envDefault:"100ms"`
	AutosaveInterval    time.Duration `env:"AUTOSAVE_INTERVAL" envDefault:"1s"`
	SessionIdleTimeout  time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"30m"`
	JanitorInterval     time.Duration `env:"SESSION_JANITOR_INTERVAL" envDefault:"1m"`
	LeaderboardLimit    int           `env:"LEADERBOARD_LIMIT" envDefault:"10"`
}

func LoadGame() (GameConfig, error) {
	var cfg GameConfig
	err := env.Parse(&cfg)
	return cfg, err
}
