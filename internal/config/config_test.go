// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Backend.URL == "" {
		t.Error("default backend URL should not be empty")
	}
	if cfg.Backend.TimeoutSecs <= 0 {
		t.Errorf("default timeout should be positive, got %d", cfg.Backend.TimeoutSecs)
	}
	if !cfg.Cache.Enabled {
		t.Error("cache should be enabled by default")
	}
	if cfg.Currency.EURToMADFallback <= 0 {
		t.Errorf("default EUR-to-MAD fallback should be positive, got %f", cfg.Currency.EURToMADFallback)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestSaveAndLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.Backend.URL = "https://budget.example.com"
	cfg.Backend.TimeoutSecs = 45
	cfg.UI.Theme = "light"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if loaded.Backend.URL != "https://budget.example.com" {
		t.Errorf("backend URL = %q", loaded.Backend.URL)
	}
	if loaded.Backend.TimeoutSecs != 45 {
		t.Errorf("timeout = %d, want 45", loaded.Backend.TimeoutSecs)
	}
	if loaded.UI.Theme != "light" {
		t.Errorf("theme = %q, want light", loaded.UI.Theme)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	data := `{"backend": {"url": "http://10.0.0.5:8000", "timeout_secs": 20}}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if loaded.Backend.URL != "http://10.0.0.5:8000" {
		t.Errorf("backend URL = %q", loaded.Backend.URL)
	}
	if loaded.Backend.TimeoutSecs != 20 {
		t.Errorf("timeout = %d, want 20", loaded.Backend.TimeoutSecs)
	}
	// Fields absent from the file keep their defaults.
	if loaded.Currency.EURToMADFallback != Default().Currency.EURToMADFallback {
		t.Errorf("fallback rate = %f", loaded.Currency.EURToMADFallback)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PARCBUDGET_BACKEND_URL", "https://override.example.com")
	t.Setenv("PARCBUDGET_TIMEOUT_SECS", "7")
	t.Setenv("PARCBUDGET_THEME", "light")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Backend.URL != "https://override.example.com" {
		t.Errorf("backend URL = %q", cfg.Backend.URL)
	}
	if cfg.Backend.TimeoutSecs != 7 {
		t.Errorf("timeout = %d, want 7", cfg.Backend.TimeoutSecs)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("theme = %q, want light", cfg.UI.Theme)
	}
}

func TestValidateRejectsBadURL(t *testing.T) {
	cases := []string{"", "not a url", "ftp://example.com", "://missing"}

	for _, url := range cases {
		cfg := Default()
		cfg.Backend.URL = url
		if err := cfg.Validate(); err == nil {
			t.Errorf("Validate accepted backend URL %q", url)
		}
	}
}

func TestValidateClampsValues(t *testing.T) {
	cfg := Default()
	cfg.Backend.TimeoutSecs = -5
	cfg.Cache.StaleAfterMins = 0
	cfg.Currency.EURToMADFallback = -1
	cfg.UI.Theme = "neon"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if cfg.Backend.TimeoutSecs != Default().Backend.TimeoutSecs {
		t.Errorf("timeout = %d", cfg.Backend.TimeoutSecs)
	}
	if cfg.Cache.StaleAfterMins != Default().Cache.StaleAfterMins {
		t.Errorf("stale after = %d", cfg.Cache.StaleAfterMins)
	}
	if cfg.Currency.EURToMADFallback != Default().Currency.EURToMADFallback {
		t.Errorf("fallback rate = %f", cfg.Currency.EURToMADFallback)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("theme = %q, want dark", cfg.UI.Theme)
	}
}

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := Default().SaveTo(path); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 4)
	w, err := NewWatcher(path, func(cfg *Config) {
		reloaded <- cfg
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	if err := w.Watch(); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	updated := Default()
	updated.Backend.TimeoutSecs = 99
	if err := updated.SaveTo(path); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Backend.TimeoutSecs != 99 {
			t.Errorf("reloaded timeout = %d, want 99", cfg.Backend.TimeoutSecs)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}

func TestWatcherIgnoresBrokenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := Default().SaveTo(path); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 4)
	w, err := NewWatcher(path, func(cfg *Config) {
		reloaded <- cfg
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch(); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("this is = not [valid toml"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case <-reloaded:
		t.Error("broken config file should not trigger a reload")
	case <-time.After(1 * time.Second):
		// No reload fired, as expected.
	}
}
