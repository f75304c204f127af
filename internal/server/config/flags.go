package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/flagx"
)

var serverFlags = []string{"-a", "-g", "-driver", "-d", "-s", "-k", "-t", "-l"}

// parseFlags overlays command-line flags:
//
//	-a string       HTTP bind address (e.g. ":8000")
//	-g string       gRPC bind address (e.g. ":50051")
//	-driver string  database driver (postgres or sqlite)
//	-d string       database DSN
//	-s string       token signing key
//	-k string       master key (base64)
//	-t int          access token lifetime, minutes
//	-l string       log level
//
// Flags belonging to other loaders (-c/-config) are filtered out first.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.HTTPAddr, "a", cfg.HTTPAddr, "HTTP address and port")
	fs.StringVar(&cfg.GRPCAddr, "g", cfg.GRPCAddr, "gRPC address and port")
	fs.StringVar(&cfg.DatabaseDriver, "driver", cfg.DatabaseDriver, "database driver")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "token signing key")
	fs.StringVar(&cfg.MasterKey, "k", cfg.MasterKey, "master encryption key (base64)")
	ttl := fs.Int("t", int(cfg.AccessTokenTTL.Minutes()), "access token lifetime (in minutes)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, serverFlags)); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.AccessTokenTTL = time.Duration(*ttl) * time.Minute
		}
	})
	return nil
}
