// Copyright 2026 The Taskboard Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the boardwatch
// binary.
//
// Configuration is loaded from a single yaml file specified by:
//   - TASKBOARD_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery; flags override file
// values field by field. This keeps the effective configuration
// deterministic and auditable.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the settings for a boardwatch session.
type Config struct {
	// ServerURL is the base URL of the board backend
	// (e.g., "http://localhost:5000"). Required.
	ServerURL string `yaml:"server_url"`

	// HubPath is the push channel handshake path on the backend.
	// Defaults to "/r/projectsHub".
	HubPath string `yaml:"hub_path"`

	// Username is the display name announced to other room members.
	// The backend does not enforce uniqueness.
	Username string `yaml:"username"`

	// Room is an optional project to join immediately after
	// connecting, matched by project ID or name.
	Room string `yaml:"room"`

	// LogLevel is one of "debug", "info", "warn", "error".
	// Defaults to "info".
	LogLevel string `yaml:"log_level"`
}

// Default returns the default configuration. These defaults are the
// base that a config file and flags override.
func Default() *Config {
	return &Config{
		HubPath:  "/r/projectsHub",
		LogLevel: "info",
	}
}

// Load loads configuration from the TASKBOARD_CONFIG environment
// variable. Returns the defaults when the variable is unset: unlike
// the backend pieces of the system, the client is fully configurable
// from flags alone.
func Load() (*Config, error) {
	path := os.Getenv("TASKBOARD_CONFIG")
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific yaml file path,
// merging over the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("config: server_url is required")
	}
	if c.Username == "" {
		return fmt.Errorf("config: username is required")
	}
	if c.HubPath == "" || !strings.HasPrefix(c.HubPath, "/") {
		return fmt.Errorf("config: hub_path must be an absolute path, got %q", c.HubPath)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level translates the configured log level name into a slog.Level.
func (c *Config) Level() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("config: unknown log_level %q (want debug, info, warn, or error)", c.LogLevel)
	}
}
