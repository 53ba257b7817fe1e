// Package config loads server settings from an optional TOML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config holds server configuration.
type Config struct {
	Port         int    `toml:"port"`
	DatabasePath string `toml:"database_path"`
	// ExportPageSize caps how many submissions a single export fetch
	// pulls from the store at a time.
	ExportPageSize int `toml:"export_page_size"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Port:           8080,
		DatabasePath:   "formhall.db",
		ExportPageSize: 500,
	}
}

// Load reads the TOML file at path if it exists, then applies PORT and
// DATABASE_URL environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if p := os.Getenv("PORT"); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			cfg.Port = v
		}
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.DatabasePath = dsn
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path must not be empty")
	}
	if c.ExportPageSize <= 0 {
		return fmt.Errorf("export_page_size must be positive")
	}
	return nil
}
