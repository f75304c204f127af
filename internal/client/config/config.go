package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the vaultctl CLI.
//
// ServerURL is the base URL of the REST API. TokenFile is where the access
// token from the last login is kept.
type Config struct {
	ServerURL string
	TokenFile string
	Timeout   time.Duration
}

// userConfigDir is a seam for tests.
var userConfigDir = os.UserConfigDir

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.TokenFile = DefaultTokenFile()
	c.Timeout = 10 * time.Second
}

// DefaultTokenFile is token.json in the per-user config directory, or in
// the working directory when there is none.
func DefaultTokenFile() string {
	dir, err := userConfigDir()
	if err != nil {
		return ".gophvault-token.json"
	}
	return filepath.Join(dir, "gophvault", "token.json")
}

// Load applies defaults, then the environment seen through lookup, then the
// JSON file at jsonPath when it is not empty.
func Load(jsonPath string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if v, ok := lookup("GOPHVAULT_SERVER"); ok && v != "" {
		cfg.ServerURL = v
	}
	if v, ok := lookup("GOPHVAULT_TOKEN_FILE"); ok && v != "" {
		cfg.TokenFile = v
	}
	if v, ok := lookup("GOPHVAULT_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("GOPHVAULT_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}

	if jsonPath != "" {
		if err := parseJSON(cfg, jsonPath); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}
