package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the runtime configuration for the builder service.
type Config struct {
	// ListenAddr is the HTTP listen address for the API server.
	ListenAddr string `koanf:"listen_addr"`

	// StorageRoot is the base path where site databases and page snapshots
	// are kept.
	StorageRoot string `koanf:"storage_root"`

	Generation GenerationConfig `koanf:"generation"`
	Screenshot ScreenshotConfig `koanf:"screenshot"`
}

// GenerationConfig controls how site content is generated.
type GenerationConfig struct {
	// BackendURL points at an external generation endpoint. When empty the
	// built-in provider serves POST /sites/generate locally.
	BackendURL string `koanf:"backend_url"`

	// TimeoutSeconds bounds a single generation round trip.
	TimeoutSeconds int `koanf:"timeout_seconds"`

	// Provider selects the built-in provider: "openai" or "static".
	Provider string `koanf:"provider"`

	Model  string `koanf:"model"`
	APIKey string `koanf:"api_key"`
}

// ScreenshotConfig controls preview thumbnail capture.
type ScreenshotConfig struct {
	Enabled        bool `koanf:"enabled"`
	TimeoutSeconds int  `koanf:"timeout_seconds"`
}

// Default returns a Config populated with sensible development defaults.
func Default() *Config {
	return &Config{
		ListenAddr:  ":8080",
		StorageRoot: "~/.config/avallon",
		Generation: GenerationConfig{
			TimeoutSeconds: 120,
			Provider:       "static",
			Model:          "gpt-4o",
		},
		Screenshot: ScreenshotConfig{
			TimeoutSeconds: 30,
		},
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (AVALLON_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	// AVALLON_LISTEN_ADDR -> listen_addr, AVALLON_GENERATION.API_KEY -> generation.api_key
	if err := k.Load(env.Provider("AVALLON_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "AVALLON_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr is required")
	}
	if c.StorageRoot == "" {
		return fmt.Errorf("storage_root is required")
	}
	switch c.Generation.Provider {
	case "", "static", "openai":
	default:
		return fmt.Errorf("invalid generation provider %q: must be openai or static", c.Generation.Provider)
	}
	if c.Generation.Provider == "openai" && c.Generation.APIKey == "" {
		return fmt.Errorf("generation.api_key is required for the openai provider")
	}
	return nil
}
