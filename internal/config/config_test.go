package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"btc-basis/internal/basis"
	"btc-basis/internal/model"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	yaml := `
server:
  port: "9090"
  env: production
basis:
  method: fifo
  policy: lenient
cache:
  ttl: 15m
  redis_url: redis://localhost:6379/0
`
	cfg, err := Load(writeTempFile(t, yaml))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, "9090")
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false, want true")
	}
	if m, _ := cfg.Method(); m != model.FIFO {
		t.Errorf("Method() = %q, want FIFO", m)
	}
	if p, _ := cfg.Policy(); p != basis.Lenient {
		t.Errorf("Policy() = %q, want lenient", p)
	}
	if !cfg.Cache.Enabled || cfg.Cache.TTL != 15*time.Minute {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Server.MaxUploadMB != 10 {
		t.Errorf("Server.MaxUploadMB = %d, want default 10", cfg.Server.MaxUploadMB)
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m, _ := cfg.Method(); m != model.LIFO {
		t.Errorf("default method = %q, want LIFO", m)
	}
	if p, _ := cfg.Policy(); p != basis.Strict {
		t.Errorf("default policy = %q, want strict", p)
	}
	if !cfg.Cache.Enabled || cfg.Cache.TTL != time.Hour {
		t.Errorf("default cache = %+v", cfg.Cache)
	}
}

func TestLoadCacheDisabled(t *testing.T) {
	cfg, err := Load(writeTempFile(t, "cache:\n  enabled: false\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Cache.Enabled {
		t.Error("Cache.Enabled = true, want false")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("API_PORT", "7000")
	t.Setenv("REDIS_URL", "redis://cache:6379")
	t.Setenv("BTCBASIS_POLICY", "lenient")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != "7000" || cfg.Cache.RedisURL != "redis://cache:6379" || cfg.Basis.Policy != "lenient" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad method", "basis:\n  method: HIFO\n", "basis.method"},
		{"bad policy", "basis:\n  policy: clamp\n", "basis.policy"},
		{"bad ttl", "cache:\n  ttl: -1s\n", "cache.ttl"},
		{"bad upload cap", "server:\n  max_upload_mb: -1\n", "max_upload_mb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeTempFile(t, tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadExampleConfig(t *testing.T) {
	cfg, err := Load("../../config.example.yaml")
	if err != nil {
		t.Fatalf("Load example: %v", err)
	}
	if cfg.Cache.TTL != time.Hour || !cfg.Cache.Enabled {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.IsProduction() {
		t.Error("example config should not be production")
	}
}

func TestMergeCacheEnabled(t *testing.T) {
	base := Default()

	// A hand-built override never mentions the cache.
	got := Merge(base, &Config{Basis: BasisConfig{Method: "FIFO"}})
	if !got.Cache.Enabled {
		t.Error("hand-built override disabled the cache")
	}
	if got.Basis.Method != "FIFO" {
		t.Errorf("Basis.Method = %q, want FIFO", got.Basis.Method)
	}

	loaded, err := LoadUnchecked(writeTempFile(t, "cache:\n  enabled: false\n"))
	if err != nil {
		t.Fatalf("LoadUnchecked: %v", err)
	}
	if Merge(base, loaded).Cache.Enabled {
		t.Error("explicit cache.enabled: false was not applied")
	}

	off := Default()
	off.Cache.Enabled = false
	if !Merge(off, &Config{Cache: CacheConfig{Enabled: true}}).Cache.Enabled {
		t.Error("override enabling the cache was ignored")
	}
}
