// Package config loads and finalizes the service configuration from TOML
// files and environment variables.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/filmpulse/arbiter/internal/classifier"
	"github.com/filmpulse/arbiter/pkg/database"
)

const (
	// BaseConfigFile is the default configuration file name.
	BaseConfigFile = "config.toml"

	// OverlayConfigPattern names environment-specific overlay files.
	OverlayConfigPattern = "config.%s.toml"

	// EnvArbiterEnv selects the overlay environment (e.g. "dev", "prod").
	EnvArbiterEnv = "ARBITER_ENV"
)

var databaseEnv = &database.Env{
	Host:            "ARBITER_DB_HOST",
	Port:            "ARBITER_DB_PORT",
	Name:            "ARBITER_DB_NAME",
	User:            "ARBITER_DB_USER",
	Password:        "ARBITER_DB_PASSWORD",
	SSLMode:         "ARBITER_DB_SSL_MODE",
	MaxOpenConns:    "ARBITER_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "ARBITER_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "ARBITER_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "ARBITER_DB_CONN_TIMEOUT",
}

var classifierEnv = &classifier.Env{
	BaseURL:     "ARBITER_CLASSIFIER_BASE_URL",
	Model:       "ARBITER_CLASSIFIER_MODEL",
	Timeout:     "ARBITER_CLASSIFIER_TIMEOUT",
	Temperature: "ARBITER_CLASSIFIER_TEMPERATURE",
	TopP:        "ARBITER_CLASSIFIER_TOP_P",
	MaxTokens:   "ARBITER_CLASSIFIER_MAX_TOKENS",
}

// Config is the root service configuration.
type Config struct {
	Server     ServerConfig      `toml:"server"`
	Database   database.Config   `toml:"database"`
	API        APIConfig         `toml:"api"`
	Moderation ModerationConfig  `toml:"moderation"`
	Classifier classifier.Config `toml:"classifier"`
}

// Load reads the base config file, applies an environment overlay when
// ARBITER_ENV is set, then finalizes every section. Missing files are not
// an error; defaults and environment variables fill the gaps.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadFile(BaseConfigFile, cfg); err != nil {
		return nil, err
	}

	if env := os.Getenv(EnvArbiterEnv); env != "" {
		overlay := &Config{}
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if err := loadFile(path, overlay); err != nil {
			return nil, err
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sections.
func (c *Config) Merge(overlay *Config) {
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.API.Merge(&overlay.API)
	c.Moderation.Merge(&overlay.Moderation)
	c.Classifier.Merge(&overlay.Classifier)
}

// Finalize applies defaults, environment variable overrides, and validation
// to every section.
func (c *Config) Finalize() error {
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Moderation.Finalize(); err != nil {
		return fmt.Errorf("moderation: %w", err)
	}
	if err := c.Classifier.Finalize(classifierEnv); err != nil {
		return fmt.Errorf("classifier: %w", err)
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
