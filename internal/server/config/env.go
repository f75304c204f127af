package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// TestingDSN is the in-memory SQLite database selected by TESTING=true.
const TestingDSN = "file:gophvault?mode=memory&cache=shared&_pragma=foreign_keys(1)"

// parseEnv overlays environment variables. The names SECRET_KEY, ALGORITHM,
// ACCESS_TOKEN_EXPIRE_MINUTES and DB_* match the .env files produced by
// vaultctl genenv; FERNET_KEY is read when MASTER_KEY is unset.
func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	setString := func(dst *string, names ...string) {
		for _, name := range names {
			if v, ok := get(name); ok {
				*dst = v
				return
			}
		}
	}

	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	setString(&cfg.GRPCAddr, "GRPC_ADDR")
	setString(&cfg.SecretKey, "SECRET_KEY")
	setString(&cfg.MasterKey, "MASTER_KEY", "FERNET_KEY")
	setString(&cfg.Algorithm, "ALGORITHM")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFormat, "LOG_FORMAT")

	if v, ok := get("ACCESS_TOKEN_EXPIRE_MINUTES"); ok {
		minutes, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES: %w", err)
		}
		cfg.AccessTokenTTL = time.Duration(minutes) * time.Minute
	}
	if v, ok := get("TOKEN_LEEWAY"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TOKEN_LEEWAY: %w", err)
		}
		cfg.TokenLeeway = d
	}

	if host, ok := get("DB_HOST"); ok {
		cfg.DatabaseDriver = "postgres"
		cfg.DatabaseDSN = composePostgresDSN(host, get)
	}
	setString(&cfg.DatabaseDriver, "DATABASE_DRIVER")
	setString(&cfg.DatabaseDSN, "DATABASE_DSN", "DATABASE_URL")

	if v, ok := get("TESTING"); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TESTING: %w", err)
		}
		if enabled {
			cfg.DatabaseDriver = "sqlite"
			cfg.DatabaseDSN = TestingDSN
		}
	}

	return nil
}

func composePostgresDSN(host string, get func(string) (string, bool)) string {
	port, ok := get("DB_PORT")
	if !ok {
		port = "5432"
	}
	name, ok := get("DB_NAME")
	if !ok {
		name = "gophvault"
	}

	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(host, port),
		Path:     "/" + name,
		RawQuery: "sslmode=disable",
	}
	if user, ok := get("DB_USER"); ok {
		if password, ok := get("DB_PASSWORD"); ok {
			u.User = url.UserPassword(user, password)
		} else {
			u.User = url.User(user)
		}
	}
	return u.String()
}
