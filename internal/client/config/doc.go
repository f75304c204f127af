// Package config loads runtime configuration for the vaultctl CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment: GOPHVAULT_SERVER, GOPHVAULT_TOKEN_FILE, GOPHVAULT_TIMEOUT.
//  3. Optional JSON file passed with --config.
//  4. Command-line flags, applied by the cli package after Load.
//
// # JSON schema
//
// Timeouts use timex.Duration, so values can be either strings like "10s"
// or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8000",
//	  "token_file": "/home/ada/.config/gophvault/token.json",
//	  "timeout": "10s"
//	}
package config
