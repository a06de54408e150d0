// Package config loads mathsheet settings from an optional YAML file and
// MATHSHEET_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/mathsheet/internal/worksheet"
)

// Config holds all mathsheet configuration.
type Config struct {
	// DBPath is the SQLite database file. Empty means store.DefaultDBPath.
	DBPath string `yaml:"db_path"`

	Server    ServerConfig    `yaml:"server"`
	Generator GeneratorConfig `yaml:"generator"`

	// Defaults fills fields a request leaves out.
	Defaults worksheet.Params `yaml:"defaults"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// AllowedOrigins lists origins allowed to call the API from a browser.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// GeneratorConfig configures the problem generator.
type GeneratorConfig struct {
	// MaxAttempts is the per-problem retry ceiling.
	MaxAttempts int `yaml:"max_attempts"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		},
		Generator: GeneratorConfig{
			MaxAttempts: worksheet.DefaultConfig().MaxAttempts,
		},
		Defaults: worksheet.DefaultSpec().Params(),
	}
}

// WorksheetConfig converts the generator settings for worksheet.New.
func (c Config) WorksheetConfig() worksheet.Config {
	return worksheet.Config{MaxAttempts: c.Generator.MaxAttempts}
}

// Load builds a Config from defaults, then the YAML file at path (if path
// is non-empty), then environment variables.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// FromEnv is Load with the file named by MATHSHEET_CONFIG, if any.
func FromEnv() (Config, error) {
	return Load(os.Getenv("MATHSHEET_CONFIG"))
}

func applyEnv(cfg *Config) error {
	if p := os.Getenv("MATHSHEET_DB"); p != "" {
		cfg.DBPath = p
	}
	if a := os.Getenv("MATHSHEET_ADDR"); a != "" {
		cfg.Server.Addr = a
	}
	if v := os.Getenv("MATHSHEET_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MATHSHEET_MAX_ATTEMPTS: %w", err)
		}
		cfg.Generator.MaxAttempts = n
	}
	return nil
}

// Validate checks the loaded values.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is empty")
	}
	if c.Generator.MaxAttempts < 1 {
		return fmt.Errorf("generator.max_attempts must be positive, got %d", c.Generator.MaxAttempts)
	}
	if _, err := c.Defaults.WithDefaults(worksheet.DefaultSpec().Params()).Spec(); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	return nil
}
