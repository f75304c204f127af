package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophvault/internal/timex"
)

// JSONConfig is a DTO used exclusively for JSON unmarshalling. Empty
// fields leave the current value alone.
type JSONConfig struct {
	ServerURL string         `json:"server_url"`
	TokenFile string         `json:"token_file"`
	Timeout   timex.Duration `json:"timeout"`
}

func parseJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.TokenFile != "" {
		cfg.TokenFile = jc.TokenFile
	}
	if jc.Timeout.Duration != 0 {
		cfg.Timeout = jc.Timeout.Duration
	}
	return nil
}
