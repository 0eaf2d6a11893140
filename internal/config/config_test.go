package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.ListenAddr != ":8080" {
		t.Errorf("expected default listen_addr :8080, got %q", cfg.ListenAddr)
	}
	if cfg.Generation.Provider != "static" {
		t.Errorf("expected default provider static, got %q", cfg.Generation.Provider)
	}
	if cfg.Generation.TimeoutSeconds != 120 {
		t.Errorf("expected default generation timeout 120, got %d", cfg.Generation.TimeoutSeconds)
	}
	if cfg.Screenshot.Enabled {
		t.Error("screenshots should be disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "avallon.yaml")

	yaml := `
listen_addr: ":9090"
storage_root: /tmp/avallon-test
generation:
  provider: openai
  model: gpt-4o-mini
  api_key: sk-test
  timeout_seconds: 60
screenshot:
  enabled: true
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ListenAddr != ":9090" {
		t.Errorf("listen_addr: got %q, want :9090", cfg.ListenAddr)
	}
	if cfg.Generation.Provider != "openai" {
		t.Errorf("provider: got %q, want openai", cfg.Generation.Provider)
	}
	if cfg.Generation.Model != "gpt-4o-mini" {
		t.Errorf("model: got %q", cfg.Generation.Model)
	}
	if cfg.Generation.TimeoutSeconds != 60 {
		t.Errorf("timeout_seconds: got %d, want 60", cfg.Generation.TimeoutSeconds)
	}
	if !cfg.Screenshot.Enabled {
		t.Error("screenshot.enabled not loaded")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config invalid: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("Load of missing file failed: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("missing file should fall back to defaults, got %q", cfg.ListenAddr)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("AVALLON_LISTEN_ADDR", ":7070")
	t.Setenv("AVALLON_GENERATION.PROVIDER", "static")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ListenAddr != ":7070" {
		t.Errorf("env override not applied: got %q", cfg.ListenAddr)
	}
	if cfg.Generation.Provider != "static" {
		t.Errorf("nested env override not applied: got %q", cfg.Generation.Provider)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"missing listen addr", func(c *Config) { c.ListenAddr = "" }, true},
		{"missing storage root", func(c *Config) { c.StorageRoot = "" }, true},
		{"unknown provider", func(c *Config) { c.Generation.Provider = "llama" }, true},
		{"openai without key", func(c *Config) { c.Generation.Provider = "openai" }, true},
		{"openai with key", func(c *Config) {
			c.Generation.Provider = "openai"
			c.Generation.APIKey = "sk-x"
		}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
