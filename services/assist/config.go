// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package assist

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Configuration Types
// =============================================================================

// MaxConfigFileSize bounds the YAML file read. A scenario config is a few
// hundred bytes; anything larger is a mistake.
const MaxConfigFileSize = 1 << 20

// Config is the scenario-layer configuration, loaded from assist.config.yaml
// with env overrides applied on top.
//
// Thread Safety: Immutable after loading; safe for concurrent use.
type Config struct {
	// Server holds the HTTP listener settings.
	Server ServerConfig `yaml:"server"`

	// Labels is the candidate label set for requirement classification.
	Labels []string `yaml:"labels"`

	// Summary bounds the summarizer output length, in model tokens.
	Summary SummaryConfig `yaml:"summary"`

	// Generation tunes text-generation calls.
	Generation GenerationConfig `yaml:"generation"`

	// Cache configures the BadgerDB response cache. An empty Dir disables
	// persistence; scenarios then run uncached.
	Cache CacheConfig `yaml:"cache"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	// Port is the TCP port the gin server binds. Default 8085.
	Port int `yaml:"port"`
}

// SummaryConfig bounds summarizer output length.
type SummaryConfig struct {
	// MinLength is the minimum summary length in tokens.
	MinLength int `yaml:"min_length"`

	// MaxLength is the maximum summary length in tokens.
	MaxLength int `yaml:"max_length"`
}

// GenerationConfig tunes text-generation calls.
type GenerationConfig struct {
	// MaxNewTokens caps generated continuation length.
	MaxNewTokens int `yaml:"max_new_tokens"`

	// Temperature controls sampling randomness. Zero means the provider
	// default.
	Temperature float64 `yaml:"temperature"`
}

// CacheConfig configures the BadgerDB response cache.
type CacheConfig struct {
	// Dir is the on-disk directory for the cache database. Empty disables
	// the cache.
	Dir string `yaml:"dir"`

	// TTLHours is the entry lifetime in hours. Zero means the default (24).
	TTLHours int `yaml:"ttl_hours"`
}

// TTL returns the cache entry lifetime as a duration.
func (c CacheConfig) TTL() time.Duration {
	if c.TTLHours <= 0 {
		return responseCacheDefaultTTL
	}
	return time.Duration(c.TTLHours) * time.Hour
}

// =============================================================================
// Defaults
// =============================================================================

const (
	// DefaultServerPort is the default HTTP listener port.
	DefaultServerPort = 8085

	// DefaultSummaryMinLength is the default minimum summary length.
	DefaultSummaryMinLength = 20

	// DefaultSummaryMaxLength is the default maximum summary length.
	DefaultSummaryMaxLength = 80

	// DefaultMaxNewTokens is the default generation cap.
	DefaultMaxNewTokens = 128
)

// defaultLabels is the candidate set for requirement classification. The
// three-way split mirrors how requirements reviews triage statements.
var defaultLabels = []string{"functional", "non-functional", "ambiguous"}

// DefaultConfig returns a Config with production defaults and no cache dir.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{Port: DefaultServerPort},
		Labels: append([]string(nil), defaultLabels...),
		Summary: SummaryConfig{
			MinLength: DefaultSummaryMinLength,
			MaxLength: DefaultSummaryMaxLength,
		},
		Generation: GenerationConfig{MaxNewTokens: DefaultMaxNewTokens},
	}
}

// =============================================================================
// Loading
// =============================================================================

// LoadConfig reads the YAML file at path (if it exists), applies defaults
// for missing fields, then applies env overrides.
//
// Description:
//
//	A missing file is not an error: the service runs fine on defaults plus
//	env. A present-but-unparseable file IS an error — silently ignoring a
//	typo'd config is worse than refusing to start.
//
// Inputs:
//   - path: Config file path. May be empty to skip file loading entirely.
//
// Outputs:
//   - Config: The effective configuration.
//   - error: Non-nil on parse or validation failure.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			slog.Debug("No config file, using defaults", slog.String("path", path))
		case err != nil:
			return Config{}, fmt.Errorf("assist: reading config %s: %w", path, err)
		default:
			if len(data) > MaxConfigFileSize {
				return Config{}, fmt.Errorf("assist: config %s exceeds maximum size (%d > %d)",
					path, len(data), MaxConfigFileSize)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("assist: parsing config %s: %w", path, err)
			}
		}
	}

	applyConfigDefaults(&cfg)
	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	if err := validateConfig(&cfg); err != nil {
		return Config{}, fmt.Errorf("assist: config validation: %w", err)
	}

	slog.Info("Scenario config loaded",
		slog.Int("port", cfg.Server.Port),
		slog.Int("labels", len(cfg.Labels)),
		slog.Bool("cache_enabled", cfg.Cache.Dir != ""),
	)
	return cfg, nil
}

// applyConfigDefaults fills zero-valued fields after YAML parsing.
func applyConfigDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if len(cfg.Labels) == 0 {
		cfg.Labels = append([]string(nil), defaultLabels...)
	}
	if cfg.Summary.MinLength <= 0 {
		cfg.Summary.MinLength = DefaultSummaryMinLength
	}
	if cfg.Summary.MaxLength <= 0 {
		cfg.Summary.MaxLength = DefaultSummaryMaxLength
	}
	if cfg.Generation.MaxNewTokens <= 0 {
		cfg.Generation.MaxNewTokens = DefaultMaxNewTokens
	}
}

// applyEnvOverrides applies ASSIST_PORT and ASSIST_CACHE_DIR on top of the
// file values. Env wins: it is the deployment's last word.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("ASSIST_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("assist: invalid ASSIST_PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("ASSIST_CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
	return nil
}

// validateConfig checks cross-field consistency.
func validateConfig(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", cfg.Server.Port)
	}
	if cfg.Summary.MinLength > cfg.Summary.MaxLength {
		return fmt.Errorf("summary min_length (%d) exceeds max_length (%d)",
			cfg.Summary.MinLength, cfg.Summary.MaxLength)
	}
	for i, label := range cfg.Labels {
		if label == "" {
			return fmt.Errorf("labels[%d] must not be empty", i)
		}
	}
	return nil
}
