// Package config handles configuration loading from the config file and environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"osident/internal/domain"
)

// Output formats.
const (
	OutputAuto  = "auto"
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// Config holds the resolver and CLI settings.
type Config struct {
	LogLevel    string             `yaml:"log-level,omitempty"`    // debug, info, warn, error (default "warn")
	TokenPolicy domain.TokenPolicy `yaml:"token-policy,omitempty"` // degrade (default) or strict
	Output      string             `yaml:"output,omitempty"`       // auto (default), table, json, yaml
	NoCache     bool               `yaml:"no-cache,omitempty"`     // resolve on every query instead of once

	// Path is the config file that was read, empty when none existed.
	Path string `yaml:"-"`

	// Warnings collects non-fatal problems found while loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:    "warn",
		TokenPolicy: domain.TokenPolicyDegrade,
		Output:      OutputAuto,
	}
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// FilePath returns the config file location: $OSIDENT_CONFIG, or
// ~/.osident/config.yaml.
func FilePath() string {
	if v := os.Getenv("OSIDENT_CONFIG"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".osident", "config.yaml")
}

// Load reads the config file, if present, and applies environment overrides.
// Invalid values fall back to defaults and are reported in Warnings.
func Load() (*Config, error) {
	cfg, err := LoadFile(FilePath())
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)
	cfg.normalize()
	return cfg, nil
}

// LoadFile reads one YAML config file over the defaults. A missing file is
// not an error.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("OSIDENT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("OSIDENT_TOKEN_POLICY"); v != "" {
		cfg.TokenPolicy = domain.TokenPolicy(v)
	}
	if v := os.Getenv("OSIDENT_OUTPUT"); v != "" {
		cfg.Output = v
	}
	cfg.NoCache = parseBoolEnvDefault("OSIDENT_NO_CACHE", cfg.NoCache)
}

// normalize replaces invalid values with defaults, recording a warning for each.
func (c *Config) normalize() {
	def := Default()

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
		c.LogLevel = strings.ToLower(c.LogLevel)
	case "warning":
		c.LogLevel = "warn"
	default:
		c.Warnings = append(c.Warnings, fmt.Sprintf("unknown log level %q, using %q", c.LogLevel, def.LogLevel))
		c.LogLevel = def.LogLevel
	}

	policy, err := domain.ParseTokenPolicy(string(c.TokenPolicy))
	if err != nil {
		c.Warnings = append(c.Warnings, fmt.Sprintf("%v, using %q", err, def.TokenPolicy))
		policy = def.TokenPolicy
	}
	c.TokenPolicy = policy

	if err := ValidateOutput(c.Output); err != nil {
		c.Warnings = append(c.Warnings, fmt.Sprintf("%v, using %q", err, def.Output))
		c.Output = def.Output
	}
	if c.Output == "" {
		c.Output = def.Output
	}
}

// ValidateOutput checks an output format name. The empty string is accepted.
func ValidateOutput(output string) error {
	switch output {
	case "", OutputAuto, OutputTable, OutputJSON, OutputYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q: use 'auto', 'table', 'json' or 'yaml'", output)
	}
}

func parseBoolEnvDefault(key string, defaultVal bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if v == "" {
		return defaultVal
	}
	if v == "0" || v == "false" || v == "no" || v == "off" {
		return false
	}
	if v == "1" || v == "true" || v == "yes" || v == "on" {
		return true
	}
	return defaultVal
}
