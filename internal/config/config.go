// Package config loads the process configuration from environment
// variables, with an optional .env file for local development.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string `env:"GATEHOUSE_LISTEN" envDefault:":8475"`
	DataDir    string `env:"GATEHOUSE_DATA_DIR" envDefault:"./data"`

	// DBPath and SessionFile default to files under DataDir when unset.
	DBPath      string `env:"GATEHOUSE_DB_PATH"`
	SessionFile string `env:"GATEHOUSE_SESSION_FILE"`

	// TokenSecret signs both the auth cookie and the persisted session
	// token. When unset a random secret is generated and kept under
	// DataDir so sessions keep validating across restarts.
	TokenSecret string `env:"GATEHOUSE_TOKEN_SECRET"`

	// LogDir enables file logging when non-empty.
	LogDir string `env:"GATEHOUSE_LOG_DIR"`
}

// Load reads .env (if present) and the environment, then fills in the
// data-dir derived defaults.
func Load() (Config, error) {
	// Missing .env is fine; env vars alone are a complete configuration.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, "users.db")
	}
	if c.SessionFile == "" {
		c.SessionFile = filepath.Join(c.DataDir, "session.json")
	}
}

// SecretFile is where a generated token secret is persisted when
// GATEHOUSE_TOKEN_SECRET is not supplied.
func (c Config) SecretFile() string {
	return filepath.Join(c.DataDir, "secret.key")
}
