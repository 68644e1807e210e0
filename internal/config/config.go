// Package config loads client settings from an optional file and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// PathEnv names the environment variable holding a config file path.
const PathEnv = "YORCH_CONFIG"

type Config struct {
	Env         string        `yaml:"env" toml:"env" env:"YORCH_ENV" env-default:"local"`
	APIURL      string        `yaml:"api_url" toml:"api_url" env:"YORCH_API_URL" env-default:"http://localhost:8000/api/v1"`
	SessionFile string        `yaml:"session_file" toml:"session_file" env:"YORCH_SESSION_FILE"`
	HTTPTimeout time.Duration `yaml:"http_timeout" toml:"http_timeout" env:"YORCH_HTTP_TIMEOUT" env-default:"30s"`
	Log         LogConfig     `yaml:"log" toml:"log"`
}

type LogConfig struct {
	Level string `yaml:"level" toml:"level" env:"YORCH_LOG_LEVEL" env-default:"info"`
	File  string `yaml:"file" toml:"file" env:"YORCH_LOG_FILE"`
}

// Load reads path (yaml, toml or env file) when given, then applies the
// environment on top. An empty path reads the environment only.
func Load(path string) (*Config, error) {
	var cfg Config
	if path == "" {
		path = os.Getenv(PathEnv)
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config.Load: %w", err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if err := cfg.fillPaths(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// Dir returns ~/.yorch.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".yorch"), nil
}

func (c *Config) fillPaths() error {
	if c.SessionFile != "" && c.Log.File != "" {
		return nil
	}
	dir, err := Dir()
	if err != nil {
		return err
	}
	if c.SessionFile == "" {
		c.SessionFile = filepath.Join(dir, "session.json")
	}
	if c.Log.File == "" {
		c.Log.File = filepath.Join(dir, "yorch.log")
	}
	return nil
}
