// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

// Package config loads and validates service configuration.
//
// Precedence, lowest to highest: built-in defaults, YAML config file,
// QUILL_* environment variables, command-line flags.
package config

import (
	"net/url"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// envPrefix is the prefix for environment variable overrides.
const envPrefix = "QUILL_"

// Environment names accepted by Config.Environment.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all service configuration.
type Config struct {
	// DatabaseURL is the PostgreSQL connection string. Required.
	DatabaseURL string `koanf:"database_url"`

	// ListenAddr is the HTTP API listen address.
	ListenAddr string `koanf:"listen_addr"`

	// MetricsAddr is the metrics/health listen address. Empty disables it.
	MetricsAddr string `koanf:"metrics_addr"`

	// Environment is "development" or "production".
	Environment string `koanf:"environment"`

	// FrontendOrigin is the browser origin allowed by CORS and used to
	// decide cross-site cookie attributes.
	FrontendOrigin string `koanf:"frontend_origin"`

	// PublicOrigin is the origin this API is served from.
	PublicOrigin string `koanf:"public_origin"`

	// SessionMaxAge is how long issued sessions stay valid.
	SessionMaxAge time.Duration `koanf:"session_max_age"`

	// SweepInterval is how often expired sessions are purged.
	SweepInterval time.Duration `koanf:"sweep_interval"`

	// LogFormat is "json" or "text".
	LogFormat string `koanf:"log_format"`
}

// Default returns the built-in configuration defaults.
func Default() Config {
	return Config{
		ListenAddr:     ":8080",
		MetricsAddr:    "127.0.0.1:9100",
		Environment:    EnvDevelopment,
		FrontendOrigin: "http://localhost:5173",
		PublicOrigin:   "http://localhost:8080",
		SessionMaxAge:  7 * 24 * time.Hour,
		SweepInterval:  time.Hour,
		LogFormat:      "json",
	}
}

// Load assembles configuration from the optional YAML file at path,
// QUILL_* environment variables, and the given flag set. Either of
// path and flags may be empty/nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	// QUILL_DATABASE_URL -> database_url
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, oops.Code("CONFIG_ENV_FAILED").Wrap(err)
	}

	if flags != nil {
		// listen-addr flag -> listen_addr key; skip flags left at defaults
		// so they do not clobber file/env values.
		flagProvider := posflag.ProviderWithValue(flags, ".", k, func(key, value string) (string, any) {
			return strings.ReplaceAll(key, "-", "_"), value
		})
		if err := k.Load(flagProvider, nil); err != nil {
			return Config{}, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
			WeaklyTypedInput: true,
			Result:           &cfg,
		},
	}); err != nil {
		return Config{}, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database_url is required")
	}
	if c.Environment != EnvDevelopment && c.Environment != EnvProduction {
		return oops.Code("CONFIG_INVALID").
			With("environment", c.Environment).
			Errorf("environment must be %q or %q", EnvDevelopment, EnvProduction)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").
			With("log_format", c.LogFormat).
			Errorf("log_format must be \"json\" or \"text\"")
	}
	if c.ListenAddr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("listen_addr is required")
	}
	if c.SessionMaxAge <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("session_max_age must be positive")
	}
	if c.SweepInterval <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("sweep_interval must be positive")
	}
	for name, origin := range map[string]string{
		"frontend_origin": c.FrontendOrigin,
		"public_origin":   c.PublicOrigin,
	} {
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return oops.Code("CONFIG_INVALID").
				With(name, origin).
				Errorf("%s must be an absolute origin URL", name)
		}
	}
	return nil
}

// IsProduction reports whether the service runs in production mode.
func (c Config) IsProduction() bool {
	return c.Environment == EnvProduction
}
