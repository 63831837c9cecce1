package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Settings are per-process runtime options read from the environment.
// CLI flags override them.
type Settings struct {
	Seed       int64  `env:"DOOMCYCLE_SEED"`
	DBPath     string `env:"DOOMCYCLE_DB" envDefault:"~/.doomcycle/profile.db"`
	Profile    string `env:"DOOMCYCLE_PROFILE" envDefault:"default"`
	Language   string `env:"DOOMCYCLE_LANG" envDefault:"en"`
	LogLevel   string `env:"DOOMCYCLE_LOG_LEVEL" envDefault:"warn"`
	ConfigPath string `env:"DOOMCYCLE_CONFIG"`
	Difficulty string `env:"DOOMCYCLE_DIFFICULTY" envDefault:"normal"`
}

// LoadSettings reads Settings from the process environment.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("config: parse env: %w", err)
	}
	return s, nil
}

// ParseSettings reads Settings from an explicit environment map.
func ParseSettings(environ map[string]string) (Settings, error) {
	var s Settings
	if err := env.ParseWithOptions(&s, env.Options{Environment: environ}); err != nil {
		return Settings{}, fmt.Errorf("config: parse env: %w", err)
	}
	return s, nil
}
