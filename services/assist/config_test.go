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
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assist.config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config fixture: %v", err)
	}
	return path
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ASSIST_PORT", "")
	t.Setenv("ASSIST_CACHE_DIR", "")
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Port != DefaultServerPort {
		t.Errorf("unexpected default port: %d", cfg.Server.Port)
	}
	if len(cfg.Labels) != 3 {
		t.Errorf("unexpected default labels: %v", cfg.Labels)
	}
	if cfg.Summary.MaxLength != DefaultSummaryMaxLength {
		t.Errorf("unexpected default summary bounds: %+v", cfg.Summary)
	}
}

func TestLoadConfig_FileValues(t *testing.T) {
	clearConfigEnv(t)
	path := writeConfigFile(t, `
server:
  port: 9000
labels:
  - functional
  - security
summary:
  min_length: 10
  max_length: 50
cache:
  dir: /tmp/assist-cache
  ttl_hours: 48
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port not loaded: %d", cfg.Server.Port)
	}
	if len(cfg.Labels) != 2 || cfg.Labels[1] != "security" {
		t.Errorf("labels not loaded: %v", cfg.Labels)
	}
	if cfg.Cache.TTL() != 48*time.Hour {
		t.Errorf("cache TTL not loaded: %v", cfg.Cache.TTL())
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: 9000\n")
	t.Setenv("ASSIST_PORT", "9090")
	t.Setenv("ASSIST_CACHE_DIR", "/var/cache/assist")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("env port override ignored: %d", cfg.Server.Port)
	}
	if cfg.Cache.Dir != "/var/cache/assist" {
		t.Errorf("env cache dir override ignored: %q", cfg.Cache.Dir)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	clearConfigEnv(t)
	path := writeConfigFile(t, "server: [not a map")

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for unparseable config")
	}
}

func TestLoadConfig_InvalidPortEnv(t *testing.T) {
	t.Setenv("ASSIST_PORT", "not-a-number")

	if _, err := LoadConfig(""); err == nil {
		t.Fatal("expected error for non-numeric ASSIST_PORT")
	}
}

func TestLoadConfig_BoundsValidation(t *testing.T) {
	clearConfigEnv(t)
	path := writeConfigFile(t, "summary:\n  min_length: 90\n  max_length: 30\n")

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error when min_length exceeds max_length")
	}
}

func TestCacheConfig_DefaultTTL(t *testing.T) {
	var c CacheConfig
	if c.TTL() != responseCacheDefaultTTL {
		t.Errorf("unexpected default TTL: %v", c.TTL())
	}
}
