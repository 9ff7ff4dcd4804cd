// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for the parcbudget client.
//
// Supports both TOML and JSON formats, with defaults, environment variable
// overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.parcbudget/config.toml
//   - ~/.parcbudget/config.json
//   - Built-in defaults
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/parcbudget/parcbudget-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete parcbudget client configuration.
//
// The idle-logout policy (30 minute budget, 5 minute warning) is fixed by
// the idle package and deliberately absent here.
type Config struct {
	Version string `toml:"version" json:"version"`

	Backend  BackendConfig  `toml:"backend" json:"backend"`
	Cache    CacheConfig    `toml:"cache" json:"cache"`
	Currency CurrencyConfig `toml:"currency" json:"currency"`
	UI       UIConfig       `toml:"ui" json:"ui"`
}

// BackendConfig points the client at the budgeting backend.
type BackendConfig struct {
	// URL is the backend base URL.
	URL string `toml:"url" json:"url"`
	// TimeoutSecs is the per-request timeout in seconds.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// InsecureTLS skips certificate verification. Development backends
	// with self-signed certificates only.
	InsecureTLS bool `toml:"insecure_tls" json:"insecure_tls"`
}

// CacheConfig controls the local catalog cache.
type CacheConfig struct {
	// Enabled controls whether the catalog cache is used.
	Enabled bool `toml:"enabled" json:"enabled"`
	// Path is the SQLite database path (empty = ~/.parcbudget/catalog.db).
	Path string `toml:"path" json:"path"`
	// StaleAfterMins is how old the cached catalog may get before a
	// background refresh is triggered.
	StaleAfterMins int `toml:"stale_after_mins" json:"stale_after_mins"`
}

// CurrencyConfig controls price display.
type CurrencyConfig struct {
	// EURToMADFallback is used until the backend settings payload
	// supplies the live rate.
	EURToMADFallback float64 `toml:"eur_to_mad_fallback" json:"eur_to_mad_fallback"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// Theme selects the color theme: "dark" or "light".
	Theme string `toml:"theme" json:"theme"`
	// CompactMode tightens vertical spacing in tables.
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
}

// =============================================================================
// DEFAULTS AND PATHS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		Backend: BackendConfig{
			URL:         "http://127.0.0.1:8000",
			TimeoutSecs: 30,
		},
		Cache: CacheConfig{
			Enabled:        true,
			StaleAfterMins: 15,
		},
		Currency: CurrencyConfig{
			EURToMADFallback: 10.85,
		},
		UI: UIConfig{
			Theme:       "dark",
			CompactMode: false,
		},
	}
}

// ConfigDir returns the parcbudget configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".parcbudget"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration: TOML first, JSON as fallback, defaults
// otherwise, with environment overrides applied on top.
func Load() (*Config, error) {
	cfg := Default()

	if path, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadTOML(cfg, path); err != nil {
				return nil, err
			}
			return finish(cfg)
		}
	}

	if path, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadJSON(cfg, path); err != nil {
				return nil, err
			}
			return finish(cfg)
		}
	}

	return finish(cfg)
}

// LoadFromPath reads the configuration from an explicit file, picking the
// decoder from the extension.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	var err error
	if filepath.Ext(path) == ".json" {
		err = LoadJSON(cfg, path)
	} else {
		err = LoadTOML(cfg, path)
	}
	if err != nil {
		return nil, err
	}
	return finish(cfg)
}

// finish applies env overrides and validation.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML config: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON config: %w", err)
	}
	return nil
}

// ApplyEnvOverrides lets the environment beat the file for the settings
// that matter in scripted use.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("PARCBUDGET_BACKEND_URL"); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv("PARCBUDGET_TIMEOUT_SECS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Backend.TimeoutSecs = secs
		}
	}
	if v := os.Getenv("PARCBUDGET_CACHE"); v != "" {
		c.Cache.Enabled = v == "1" || v == "true"
	}
	if v := os.Getenv("PARCBUDGET_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// Validate checks and clamps the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.url %q is not a valid URL", c.Backend.URL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend.url scheme %q is not http(s)", u.Scheme)
	}

	if c.Backend.TimeoutSecs <= 0 {
		c.Backend.TimeoutSecs = Default().Backend.TimeoutSecs
	}
	if c.Cache.StaleAfterMins <= 0 {
		c.Cache.StaleAfterMins = Default().Cache.StaleAfterMins
	}
	if c.Currency.EURToMADFallback <= 0 {
		c.Currency.EURToMADFallback = Default().Currency.EURToMADFallback
	}
	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		c.UI.Theme = "dark"
	}
	return nil
}

// StaleAfter returns the cache staleness threshold as a duration.
func (c *Config) StaleAfter() time.Duration {
	return time.Duration(c.Cache.StaleAfterMins) * time.Minute
}

// Timeout returns the backend request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSecs) * time.Second
}

// Save writes the configuration to the TOML config file atomically.
func (c *Config) Save() error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to an explicit TOML file atomically.
func (c *Config) SaveTo(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, buf.Bytes(), 0o600, 0o700); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
