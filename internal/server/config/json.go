package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophvault/internal/flagx"
	"github.com/dmitrijs2005/gophvault/internal/timex"
)

// JSONConfig is the on-disk shape of the -c/-config file. Durations accept
// both "15m" style strings and integer nanoseconds. Absent fields keep the
// value from earlier layers.
type JSONConfig struct {
	HTTPAddr        string         `json:"http_addr"`
	GRPCAddr        string         `json:"grpc_addr"`
	DatabaseDriver  string         `json:"database_driver"`
	DatabaseDSN     string         `json:"database_dsn"`
	SecretKey       string         `json:"secret_key"`
	MasterKey       string         `json:"master_key"`
	Algorithm       string         `json:"algorithm"`
	AccessTokenTTL  timex.Duration `json:"access_token_ttl"`
	TokenLeeway     timex.Duration `json:"token_leeway"`
	Argon2Time      uint32         `json:"argon2_time"`
	Argon2MemoryKiB uint32         `json:"argon2_memory_kib"`
	Argon2Threads   uint8          `json:"argon2_threads"`
	HashConcurrency int            `json:"hash_concurrency"`
	RequestTimeout  timex.Duration `json:"request_timeout"`
	ShutdownTimeout timex.Duration `json:"shutdown_timeout"`
	MaxBodyBytes    int64          `json:"max_body_bytes"`
	LogLevel        string         `json:"log_level"`
	LogFormat       string         `json:"log_format"`
}

func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var c JSONConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	c.applyTo(cfg)
	return nil
}

func (c *JSONConfig) applyTo(cfg *Config) {
	setIf(&cfg.HTTPAddr, c.HTTPAddr)
	setIf(&cfg.GRPCAddr, c.GRPCAddr)
	setIf(&cfg.DatabaseDriver, c.DatabaseDriver)
	setIf(&cfg.DatabaseDSN, c.DatabaseDSN)
	setIf(&cfg.SecretKey, c.SecretKey)
	setIf(&cfg.MasterKey, c.MasterKey)
	setIf(&cfg.Algorithm, c.Algorithm)
	setIf(&cfg.AccessTokenTTL, c.AccessTokenTTL.Duration)
	setIf(&cfg.TokenLeeway, c.TokenLeeway.Duration)
	setIf(&cfg.Argon2Time, c.Argon2Time)
	setIf(&cfg.Argon2MemoryKiB, c.Argon2MemoryKiB)
	setIf(&cfg.Argon2Threads, c.Argon2Threads)
	setIf(&cfg.HashConcurrency, c.HashConcurrency)
	setIf(&cfg.RequestTimeout, c.RequestTimeout.Duration)
	setIf(&cfg.ShutdownTimeout, c.ShutdownTimeout.Duration)
	setIf(&cfg.MaxBodyBytes, c.MaxBodyBytes)
	setIf(&cfg.LogLevel, c.LogLevel)
	setIf(&cfg.LogFormat, c.LogFormat)
}

func setIf[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
