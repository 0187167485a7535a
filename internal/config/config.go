// Package config reads runtime settings from the environment. Flags parsed in
// main override whatever is loaded here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every runtime knob of the client.
type Config struct {
	// Backend
	APIBase     string        `env:"DOCCHAT_API_BASE" envDefault:"http://localhost:8000"`
	TopK        int           `env:"DOCCHAT_TOP_K" envDefault:"3"`
	HTTPTimeout time.Duration `env:"DOCCHAT_HTTP_TIMEOUT" envDefault:"30s"`
	UploadMode  string        `env:"DOCCHAT_UPLOAD_MODE" envDefault:"version"`

	// Local state
	DataDir  string `env:"DOCCHAT_DATA_DIR"`
	CacheDir string `env:"DOCCHAT_CACHE_DIR"`
}

// Load parses the environment and fills directory defaults from the user's
// config and cache dirs.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.DataDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			base = os.TempDir()
		}
		cfg.DataDir = filepath.Join(base, "docchat")
	}
	if cfg.CacheDir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = filepath.Join(os.TempDir(), "docchat-cache")
		}
		cfg.CacheDir = filepath.Join(base, "docchat", "docs")
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings no component could work with.
func (c Config) Validate() error {
	if c.APIBase == "" {
		return fmt.Errorf("api base must not be empty")
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.TopK)
	}
	switch c.UploadMode {
	case "skip", "version", "replace":
	default:
		return fmt.Errorf("upload mode must be skip, version or replace, got %q", c.UploadMode)
	}
	return nil
}
