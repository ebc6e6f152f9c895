package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewLoader(WithConfigPaths("nonexistent.yaml")).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Port != 8080 {
		t.Fatalf("HTTP.Port = %d, want 8080", cfg.HTTP.Port)
	}
	if cfg.Cache.Driver != "memory" {
		t.Fatalf("Cache.Driver = %q, want memory", cfg.Cache.Driver)
	}
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("TAILCALL_HTTP_PORT", "9999")
	t.Setenv("TAILCALL_CACHE_DRIVER", "redis")

	cfg, err := NewLoader(WithConfigPaths("nonexistent.yaml")).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Port != 9999 {
		t.Fatalf("HTTP.Port = %d, want 9999", cfg.HTTP.Port)
	}
	if cfg.Cache.Driver != "redis" {
		t.Fatalf("Cache.Driver = %q, want redis", cfg.Cache.Driver)
	}
}

func TestConfigFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/tailcall.yaml"
	yamlBody := "http:\n  port: 7000\n"
	if err := os.WriteFile(path, []byte(yamlBody), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := NewLoader(WithConfigPaths(path)).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Port != 7000 {
		t.Fatalf("HTTP.Port = %d, want 7000", cfg.HTTP.Port)
	}
}
