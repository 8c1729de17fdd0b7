// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SkillBridge Contributors

// Package config loads authd configuration from defaults, an optional YAML
// file, the DATABASE_URL environment variable, and command-line flags, in
// that precedence order.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/skillbridge/authd/internal/xdg"
)

// Config holds the authd runtime configuration.
type Config struct {
	// DatabaseURL is the PostgreSQL connection string. Required for any
	// command that touches the database.
	DatabaseURL string `koanf:"database_url"`
	// ListenAddr is the gateway listen address.
	ListenAddr string `koanf:"listen_addr"`
	// MetricsAddr is the observability server listen address.
	MetricsAddr string `koanf:"metrics_addr"`
	// LogFormat selects "json" or "text" log output.
	LogFormat string `koanf:"log_format"`
	// CORSOrigin is the value of the Access-Control-Allow-Origin header.
	CORSOrigin string `koanf:"cors_origin"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ListenAddr:  ":8080",
		MetricsAddr: "127.0.0.1:9100",
		LogFormat:   "json",
		CORSOrigin:  "*",
	}
}

// DefaultPath returns the default config file location under the XDG config
// directory.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigDir(), "config.yaml")
}

// Load assembles the configuration. A missing file at path is tolerated so
// the defaults-plus-flags case works without any file on disk; any other
// read or parse failure is an error. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		err := k.Load(file.Provider(path), yaml.Parser())
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		if err := k.Set("database_url", dsn); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").Wrap(err)
		}
	}

	if flags != nil {
		// Flag names use dashes; config keys use underscores. Unchanged
		// flags defer to values already loaded from the file or env.
		provider := posflag.ProviderWithValue(flags, ".", k, func(key, value string) (string, any) {
			return strings.ReplaceAll(key, "-", "_"), value
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_LOAD_FAILED").Wrap(err)
	}

	return cfg, nil
}

// Validate checks the fields every database-touching command needs.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database_url is required (set DATABASE_URL or --database-url)")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").
			With("log_format", c.LogFormat).
			Errorf("log_format must be \"json\" or \"text\"")
	}
	return nil
}
