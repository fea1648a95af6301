package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds pollctl settings. Environment variables override the file.
type Config struct {
	APIURL      string        `yaml:"api_url" env:"POLLCTL_API_URL" env-default:"http://localhost:8080" env-description:"Pollster API base URL"`
	SessionFile string        `yaml:"session_file" env:"POLLCTL_SESSION_FILE" env-description:"where the signed-in session is kept"`
	Timeout     time.Duration `yaml:"timeout" env:"POLLCTL_TIMEOUT" env-default:"15s" env-description:"per-request timeout"`
}

// configDir is the pollctl directory under the user config dir.
func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "pollctl")
}

func defaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// loadConfig reads path when it exists, then applies the environment.
// A missing file is only an error when explicit is true.
func loadConfig(path string, explicit bool) (*Config, error) {
	var cfg Config

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	case errors.Is(statErr, os.ErrNotExist) && !explicit:
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read config from environment: %w", err)
		}
	default:
		return nil, fmt.Errorf("read config %s: %w", path, statErr)
	}

	if cfg.SessionFile == "" {
		cfg.SessionFile = filepath.Join(configDir(), "session.json")
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}
	return &cfg, nil
}
