package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/DoyleJ11/ninja-squad-backend/internal/engine"
	"github.com/DoyleJ11/ninja-squad-backend/internal/session"
)

type Config struct {
	Addr        string `env:"ADDR" envDefault:":8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`
	DatabaseURL string `env:"DATABASE_URL"`

	Matchmaking Matchmaking
	Session     Session
}

type Matchmaking struct {
	Timeout           time.Duration `env:"MATCHMAKING_TIMEOUT" envDefault:"10s"`
	AllowBotsStandard bool          `env:"ALLOW_BOTS_STANDARD" envDefault:"true"`
	AllowBotsCoop     bool          `env:"ALLOW_BOTS_COOP" envDefault:"true"`
}

// AllowBots maps the per-mode switches to what the matchmaker expects.
func (m Matchmaking) AllowBots() map[engine.BattleMode]bool {
	return map[engine.BattleMode]bool{
		engine.ModeStandard: m.AllowBotsStandard,
		engine.ModeCoop:     m.AllowBotsCoop,
	}
}

type Session struct {
	RoundDuration time.Duration `env:"ROUND_DURATION" envDefault:"10s"`
	PrepareDelay  time.Duration `env:"PREPARE_DELAY" envDefault:"3s"`
	TitleDelay    time.Duration `env:"TITLE_DELAY" envDefault:"1600ms"`
	SpawnDelay    time.Duration `env:"SPAWN_DELAY" envDefault:"1s"`
	ReadyTimeout  time.Duration `env:"READY_TIMEOUT" envDefault:"30s"`
}

func (s Session) Engine() session.Config {
	return session.Config{
		RoundDuration: s.RoundDuration,
		PrepareDelay:  s.PrepareDelay,
		TitleDelay:    s.TitleDelay,
		SpawnDelay:    s.SpawnDelay,
		ReadyTimeout:  s.ReadyTimeout,
	}
}

// Load reads the optional .env files, then the environment. Variables already
// set in the environment win over the files.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Matchmaking.Timeout <= 0 {
		return fmt.Errorf("MATCHMAKING_TIMEOUT must be positive, got %s", c.Matchmaking.Timeout)
	}
	if c.Session.RoundDuration <= 0 {
		return fmt.Errorf("ROUND_DURATION must be positive, got %s", c.Session.RoundDuration)
	}
	return nil
}
