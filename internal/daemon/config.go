// Package daemon manages the Questline daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all daemon configuration.
type Config struct {
	API       APIConfig       `toml:"api"`
	Store     StoreConfig     `toml:"store"`
	Auth      AuthConfig      `toml:"auth"`
	Reviews   ReviewsConfig   `toml:"reviews"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Logging   LoggingConfig   `toml:"logging"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StoreConfig controls where the SQLite database lives.
type StoreConfig struct {
	Dir string `toml:"dir"`
}

// AuthConfig maps bearer tokens to external learner identities.
type AuthConfig struct {
	// Tokens is token -> external id. Single-tenant deployments list
	// one entry per learner.
	Tokens map[string]string `toml:"tokens"`

	// AllowAnonymous maps unauthenticated requests to the "local"
	// identity. Meant for a personal instance on localhost.
	AllowAnonymous bool `toml:"allow_anonymous"`
}

// ReviewsConfig tunes the spaced-repetition ladder.
type ReviewsConfig struct {
	// IntervalsDays must be strictly ascending. Empty means the
	// built-in ladder.
	IntervalsDays []int `toml:"intervals_days"`
}

// TelemetryConfig controls the Prometheus endpoint.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	homeDir := questlineHome()
	return Config{
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8642,
		},
		Store: StoreConfig{
			Dir: homeDir,
		},
		Auth: AuthConfig{
			AllowAnonymous: true,
		},
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(homeDir, "questline.log"),
		},
	}
}

// LoadConfig reads config from ~/.questline/config.toml, falling back to
// defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(questlineHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // No config file yet — use defaults
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the config to ~/.questline/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(questlineHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// questlineHome returns the Questline data directory.
func questlineHome() string {
	if env := os.Getenv("QUESTLINE_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".questline")
}

// Home is exported for use by other packages.
func Home() string {
	return questlineHome()
}
