// Package config loads retrace configuration from file and environment.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the full retrace configuration.
type Config struct {
	Output   OutputConfig   `mapstructure:"output"`
	Session  SessionConfig  `mapstructure:"session"`
	Patterns PatternsConfig `mapstructure:"patterns"`
}

// OutputConfig contains artifact output settings.
type OutputConfig struct {
	Dir   string `mapstructure:"dir"`
	Title string `mapstructure:"title"`
}

// SessionConfig contains per-session tracking settings. Screenshot events are
// recorded unless explicitly disabled.
type SessionConfig struct {
	UnknownCap         int    `mapstructure:"unknown_cap"`
	FlushInterval      string `mapstructure:"flush_interval"`
	DisableScreenshots bool   `mapstructure:"disable_screenshots"`
}

// PatternsConfig points at optional user-supplied recognizer rules.
type PatternsConfig struct {
	File string `mapstructure:"file"`
}

// Load loads configuration from file and environment.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults sets default values for unset fields
func applyDefaults(cfg *Config) {
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "agent_logs"
	}
	if cfg.Output.Title == "" {
		cfg.Output.Title = "Agent Execution Timeline"
	}
	if cfg.Session.UnknownCap == 0 {
		cfg.Session.UnknownCap = 1000
	}
	if cfg.Session.FlushInterval == "" {
		cfg.Session.FlushInterval = "30s"
	}
}

// validate rejects values the tracker cannot work with.
func validate(cfg *Config) error {
	if cfg.Session.UnknownCap < 0 {
		return fmt.Errorf("session.unknown_cap must not be negative")
	}
	if _, err := cfg.FlushInterval(); err != nil {
		return err
	}
	return nil
}

// FlushInterval parses the configured flush interval.
func (c *Config) FlushInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Session.FlushInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid session.flush_interval %q: %w", c.Session.FlushInterval, err)
	}
	return d, nil
}
