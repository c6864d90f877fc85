// Package config resolves ribbon's runtime settings from a .env file and
// RIBBON_* environment variables (spec's ambient configuration stack),
// leaving CLI flags (bound with pflag through cobra in cmd/ribbon) free
// to override whatever Load resolves.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds the settings every ribbon subcommand needs to open a
// Store and attribute commits.
type Config struct {
	// DSN is the namespace store's database connection string, passed to
	// internal/namespace/storage.Connect.
	DSN string
	// Author attributes commits made without an explicit --author flag.
	Author string
}

// Load reads envFile (if it exists; a missing file is skipped rather than
// passed to godotenv.Load, so it is not an error) and then resolves RIBBON_DSN and
// RIBBON_AUTHOR from the process environment, falling back to defaults.
func Load(envFile string) (*Config, error) {
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		DSN:    os.Getenv("RIBBON_DSN"),
		Author: os.Getenv("RIBBON_AUTHOR"),
	}
	if cfg.DSN == "" {
		cfg.DSN = "ribbon.db"
	}
	if cfg.Author == "" {
		cfg.Author = "cli"
	}
	return cfg, nil
}
