// Copyright 2026 The Taskboard Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taskboard.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfigFile(t, `
server_url: http://localhost:5000
username: alice
room: GROCERIES
log_level: debug
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.ServerURL != "http://localhost:5000" {
		t.Errorf("ServerURL = %q", cfg.ServerURL)
	}
	if cfg.Username != "alice" {
		t.Errorf("Username = %q", cfg.Username)
	}
	if cfg.Room != "GROCERIES" {
		t.Errorf("Room = %q", cfg.Room)
	}
	// Unset fields keep their defaults.
	if cfg.HubPath != "/r/projectsHub" {
		t.Errorf("HubPath = %q, want default", cfg.HubPath)
	}

	level, err := cfg.Level()
	if err != nil {
		t.Fatalf("Level failed: %v", err)
	}
	if level != slog.LevelDebug {
		t.Errorf("Level = %v, want debug", level)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	valid := &Config{
		ServerURL: "http://localhost:5000",
		HubPath:   "/r/projectsHub",
		Username:  "alice",
		LogLevel:  "info",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing server_url", func(c *Config) { c.ServerURL = "" }},
		{"missing username", func(c *Config) { c.Username = "" }},
		{"relative hub_path", func(c *Config) { c.HubPath = "r/projectsHub" }},
		{"bad log_level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := *valid
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadWithoutEnv(t *testing.T) {
	t.Setenv("TASKBOARD_CONFIG", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HubPath != "/r/projectsHub" {
		t.Errorf("HubPath = %q, want default", cfg.HubPath)
	}
}
