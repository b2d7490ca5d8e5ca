// NoveList - Book Rating Prediction for To-Read Shelves
// Copyright 2026 NoveList contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/novelist-app/novelist

// Package config loads and validates the NoveList server configuration.
//
// Configuration is layered via Koanf v2 with clear precedence
// (highest wins): environment variables > YAML config file > built-in
// defaults. See koanf.go for the loading pipeline.
package config

import (
	"fmt"
	"time"
)

// Backend names accepted for the catalog and corpus providers.
const (
	BackendCSV    = "csv"
	BackendDuckDB = "duckdb"
)

// Config is the root configuration for the NoveList server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Corpus   CorpusConfig   `koanf:"corpus"`
	Engine   EngineConfig   `koanf:"engine"`
	Profiles ProfilesConfig `koanf:"profiles"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Port is the HTTP listen port.
	Port int `koanf:"port"`

	// Host is the HTTP listen address.
	Host string `koanf:"host"`

	// Timeout is the per-request read/write timeout.
	Timeout time.Duration `koanf:"timeout"`
}

// CatalogConfig selects the reference-table backend that maps
// export-facing book ids to the corpus's internal book ids.
type CatalogConfig struct {
	// Backend is "csv" or "duckdb".
	Backend string `koanf:"backend"`

	// Path is the book id mapping CSV (csv backend).
	Path string `koanf:"path"`

	// Database is the DuckDB database file (duckdb backend).
	Database string `koanf:"database"`

	// Table is the mapping table name (duckdb backend).
	Table string `koanf:"table"`
}

// CorpusConfig selects the shared ratings corpus backend.
type CorpusConfig struct {
	// Backend is "csv" or "duckdb".
	Backend string `koanf:"backend"`

	// Path is the ratings CSV (csv backend).
	Path string `koanf:"path"`

	// Database is the DuckDB database file (duckdb backend).
	Database string `koanf:"database"`
}

// EngineConfig holds the rating-prediction engine parameters.
// The defaults reproduce the baseline configuration the corpus model
// was tuned with; change them only with a retuned corpus.
type EngineConfig struct {
	// Epochs is the number of alternating least squares passes.
	Epochs int `koanf:"epochs"`

	// ItemReg is the item bias regularization term.
	ItemReg float64 `koanf:"item_reg"`

	// UserReg is the user bias regularization term.
	UserReg float64 `koanf:"user_reg"`

	// MinRead is the minimum number of mapped read books required to rank.
	MinRead int `koanf:"min_read"`

	// MinToRead is the minimum number of mapped to-read books required to rank.
	MinToRead int `koanf:"min_to_read"`

	// DefaultK is the slice size used when a request does not specify k.
	DefaultK int `koanf:"default_k"`

	// MaxK is the maximum accepted k.
	MaxK int `koanf:"max_k"`

	// FitTimeout bounds a single model fit.
	FitTimeout time.Duration `koanf:"fit_timeout"`
}

// ProfilesConfig enables ranking of pre-loaded demo libraries.
type ProfilesConfig struct {
	// Enabled controls whether the demo endpoint is registered.
	Enabled bool `koanf:"enabled"`

	// Dir is the directory holding <profile>.csv library exports.
	Dir string `koanf:"dir"`
}

// SecurityConfig holds the HTTP hardening settings.
type SecurityConfig struct {
	// RateLimitReqs is the number of requests allowed per window.
	RateLimitReqs int `koanf:"rate_limit_reqs"`

	// RateLimitWindow is the rate limiting window.
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// RateLimitDisabled turns rate limiting off entirely.
	RateLimitDisabled bool `koanf:"rate_limit_disabled"`

	// CORSOrigins lists allowed CORS origins.
	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %v", c.Server.Timeout)
	}

	if err := validateBackend("catalog.backend", c.Catalog.Backend); err != nil {
		return err
	}
	if c.Catalog.Backend == BackendCSV && c.Catalog.Path == "" {
		return fmt.Errorf("catalog.path is required for the csv backend")
	}
	if c.Catalog.Backend == BackendDuckDB && c.Catalog.Database == "" {
		return fmt.Errorf("catalog.database is required for the duckdb backend")
	}

	if err := validateBackend("corpus.backend", c.Corpus.Backend); err != nil {
		return err
	}
	if c.Corpus.Backend == BackendCSV && c.Corpus.Path == "" {
		return fmt.Errorf("corpus.path is required for the csv backend")
	}
	if c.Corpus.Backend == BackendDuckDB && c.Corpus.Database == "" {
		return fmt.Errorf("corpus.database is required for the duckdb backend")
	}

	if c.Engine.Epochs < 1 {
		return fmt.Errorf("engine.epochs must be positive, got %d", c.Engine.Epochs)
	}
	if c.Engine.ItemReg < 0 {
		return fmt.Errorf("engine.item_reg must be non-negative, got %f", c.Engine.ItemReg)
	}
	if c.Engine.UserReg < 0 {
		return fmt.Errorf("engine.user_reg must be non-negative, got %f", c.Engine.UserReg)
	}
	if c.Engine.MinRead < 1 {
		return fmt.Errorf("engine.min_read must be positive, got %d", c.Engine.MinRead)
	}
	if c.Engine.MinToRead < 2 {
		return fmt.Errorf("engine.min_to_read must be at least 2, got %d", c.Engine.MinToRead)
	}
	if c.Engine.DefaultK < 1 {
		return fmt.Errorf("engine.default_k must be positive, got %d", c.Engine.DefaultK)
	}
	if c.Engine.MaxK < c.Engine.DefaultK {
		return fmt.Errorf("engine.max_k must be >= engine.default_k, got %d < %d", c.Engine.MaxK, c.Engine.DefaultK)
	}
	if c.Engine.FitTimeout <= 0 {
		return fmt.Errorf("engine.fit_timeout must be positive, got %v", c.Engine.FitTimeout)
	}

	if c.Profiles.Enabled && c.Profiles.Dir == "" {
		return fmt.Errorf("profiles.dir is required when profiles are enabled")
	}

	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("security.rate_limit_reqs must be positive, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("security.rate_limit_window must be positive, got %v", c.Security.RateLimitWindow)
		}
	}

	return nil
}

func validateBackend(key, backend string) error {
	switch backend {
	case BackendCSV, BackendDuckDB:
		return nil
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", key, BackendCSV, BackendDuckDB, backend)
	}
}
