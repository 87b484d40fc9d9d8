// Package config loads the mudra YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/mudra/internal/hmm"
	"github.com/ayusman/mudra/internal/selector"
)

// Config is the top-level configuration.
type Config struct {
	Database  string          `yaml:"database"`
	LogLevel  string          `yaml:"log_level"`
	Selection SelectionConfig `yaml:"selection"`
	Trainer   TrainerConfig   `yaml:"trainer"`
	Server    ServerConfig    `yaml:"server"`
}

// SelectionConfig controls the state-count search.
type SelectionConfig struct {
	Strategy  string `yaml:"strategy"`
	MinStates int    `yaml:"min_states"`
	MaxStates int    `yaml:"max_states"`
	Constant  int    `yaml:"constant"`
	Seed      int64  `yaml:"seed"`
	Workers   int    `yaml:"workers"`
}

// TrainerConfig controls HMM training.
type TrainerConfig struct {
	MaxIter   int     `yaml:"max_iter"`
	Tolerance float64 `yaml:"tolerance"`
	MinCovar  float64 `yaml:"min_covar"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Database: "~/.mudra/mudra.db",
		LogLevel: "info",
		Selection: SelectionConfig{
			Strategy:  string(selector.StrategyBIC),
			MinStates: selector.DefaultMinStates,
			MaxStates: selector.DefaultMaxStates,
			Constant:  selector.DefaultConstant,
			Seed:      selector.DefaultSeed,
			Workers:   4,
		},
		Trainer: TrainerConfig{
			MaxIter:   hmm.DefaultMaxIter,
			Tolerance: hmm.DefaultTol,
			MinCovar:  hmm.DefaultMinCovar,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(ExpandHome(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the selector and trainer reject.
func (c *Config) Validate() error {
	var errs []error

	if _, err := selector.ParseStrategy(c.Selection.Strategy); err != nil {
		errs = append(errs, err)
	}
	if c.Selection.MinStates < 1 {
		errs = append(errs, fmt.Errorf("selection.min_states must be at least 1, got %d", c.Selection.MinStates))
	}
	if c.Selection.MaxStates < c.Selection.MinStates {
		errs = append(errs, fmt.Errorf("selection.max_states (%d) is below min_states (%d)", c.Selection.MaxStates, c.Selection.MinStates))
	}
	if c.Selection.Constant < 1 {
		errs = append(errs, fmt.Errorf("selection.constant must be at least 1, got %d", c.Selection.Constant))
	}
	if c.Selection.Workers < 1 {
		errs = append(errs, fmt.Errorf("selection.workers must be at least 1, got %d", c.Selection.Workers))
	}
	if c.Trainer.MaxIter < 1 {
		errs = append(errs, fmt.Errorf("trainer.max_iter must be positive, got %d", c.Trainer.MaxIter))
	}
	if c.Trainer.Tolerance <= 0 {
		errs = append(errs, fmt.Errorf("trainer.tolerance must be positive, got %g", c.Trainer.Tolerance))
	}
	if c.Trainer.MinCovar <= 0 {
		errs = append(errs, fmt.Errorf("trainer.min_covar must be positive, got %g", c.Trainer.MinCovar))
	}
	if c.Database == "" {
		errs = append(errs, errors.New("database path is required"))
	}

	return errors.Join(errs...)
}

// NewTrainer builds an HMM trainer from the trainer section.
func (c *Config) NewTrainer() *hmm.Trainer {
	return &hmm.Trainer{
		MaxIter:  c.Trainer.MaxIter,
		Tol:      c.Trainer.Tolerance,
		MinCovar: c.Trainer.MinCovar,
	}
}

// DatabasePath returns the database path with ~ expanded.
func (c *Config) DatabasePath() string {
	return ExpandHome(c.Database)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
