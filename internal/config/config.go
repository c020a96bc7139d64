// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for
// modelschat.
//
// Configuration comes from ~/.modelschat/config.toml with environment
// variable overrides and built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete modelschat configuration.
type Config struct {
	// Backend configuration (the proxy that owns chat and files)
	Backend BackendConfig `toml:"backend"`

	// Gemini configuration (direct API access, optional)
	Gemini GeminiConfig `toml:"gemini"`

	// Chat defaults applied to a fresh session
	Chat ChatConfig `toml:"chat"`

	// Files configuration
	Files FilesConfig `toml:"files"`

	// Telemetry configuration
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// BackendConfig contains the backend proxy settings.
type BackendConfig struct {
	// URL is the backend base URL
	URL string `toml:"url"`
}

// GeminiConfig contains direct Gemini API settings.
type GeminiConfig struct {
	// APIKey enables the direct Gemini path when set
	APIKey string `toml:"api_key"`
	// BaseURL overrides the public API endpoint (empty = default)
	BaseURL string `toml:"base_url"`
	// Direct sends Gemini traffic straight to the API instead of
	// through the backend proxy
	Direct bool `toml:"direct"`
}

// ChatConfig contains session defaults.
type ChatConfig struct {
	// Provider is the startup provider: "gemini" or "custom"
	Provider string `toml:"provider"`
	// SystemPrompt is the saved system prompt text
	SystemPrompt string `toml:"system_prompt"`
	// UseSystemPrompt sends the system prompt with each request
	UseSystemPrompt bool `toml:"use_system_prompt"`
	// UseRAG requests document retrieval on each turn
	UseRAG bool `toml:"use_rag"`
}

// FilesConfig contains document store settings.
type FilesConfig struct {
	// DropDir, when set, is watched for new files to auto-upload
	DropDir string `toml:"drop_dir"`
}

// TelemetryConfig contains usage-ledger settings.
type TelemetryConfig struct {
	// Enabled records per-turn token usage locally
	Enabled bool `toml:"enabled"`
	// Path overrides the ledger location (empty = ~/.modelschat/usage.db)
	Path string `toml:"path"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			// Explicit IPv4 instead of localhost to avoid IPv6
			// resolution issues on Windows.
			URL: "http://127.0.0.1:3001",
		},
		Gemini: GeminiConfig{},
		Chat: ChatConfig{
			Provider: "gemini",
		},
		Files: FilesConfig{},
		Telemetry: TelemetryConfig{
			Enabled: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the modelschat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".modelschat"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// TelemetryPath resolves the usage-ledger location.
func (c *Config) TelemetryPath() (string, error) {
	if c.Telemetry.Path != "" {
		return c.Telemetry.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "usage.db"), nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads the config file if present, applies environment overrides
// and returns the result. A missing file is not an error; the defaults
// apply.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from an explicit file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the TOML config file.
// Created 0600; the file may hold an API key.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# modelschat configuration file")
	fmt.Fprintln(file, "# Generated by modelschat - edit with care")
	fmt.Fprintln(file, "")

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// ENV OVERRIDES / VALIDATION
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
func (c *Config) ApplyEnvOverrides() {
	// MODELSCHAT_BACKEND_URL
	if url := os.Getenv("MODELSCHAT_BACKEND_URL"); url != "" {
		c.Backend.URL = url
	}

	// MODELSCHAT_GEMINI_KEY / GEMINI_API_KEY
	if key := os.Getenv("MODELSCHAT_GEMINI_KEY"); key != "" {
		c.Gemini.APIKey = key
	} else if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}

	// MODELSCHAT_GEMINI_DIRECT
	if direct := os.Getenv("MODELSCHAT_GEMINI_DIRECT"); direct != "" {
		c.Gemini.Direct = direct == "1" || strings.ToLower(direct) == "true"
	}

	// MODELSCHAT_PROVIDER
	if provider := os.Getenv("MODELSCHAT_PROVIDER"); provider != "" {
		c.Chat.Provider = provider
	}

	// MODELSCHAT_DROP_DIR
	if dir := os.Getenv("MODELSCHAT_DROP_DIR"); dir != "" {
		c.Files.DropDir = dir
	}
}

// Validate rejects configurations the client cannot run with.
func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("backend.url must not be empty")
	}
	if !strings.HasPrefix(c.Backend.URL, "http://") && !strings.HasPrefix(c.Backend.URL, "https://") {
		return fmt.Errorf("backend.url must be an http(s) URL, got %q", c.Backend.URL)
	}
	switch c.Chat.Provider {
	case "gemini", "custom":
	default:
		return fmt.Errorf("chat.provider must be %q or %q, got %q", "gemini", "custom", c.Chat.Provider)
	}
	if c.Gemini.Direct && c.Gemini.APIKey == "" {
		return fmt.Errorf("gemini.direct requires gemini.api_key")
	}
	return nil
}
