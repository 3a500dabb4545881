// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from defaults, an optional
// YAML file, and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. External Services:
//     - Tracking: Remote tracking API holding uploaded location tracks
//     - Routing: OSRM-compatible road routing service used for snapping
//     - Breaker: Circuit breaker guarding the tracking API
//
//  2. Live Sync:
//     - Sync: Polling interval and page bounds for incremental loads
//
//  3. HTTP Surface:
//     - Server: Listen address and shutdown behavior
//     - Security: CORS and rate limiting
//
//  4. Observability:
//     - Logging: Log levels and output formats
type Config struct {
	Tracking TrackingConfig `koanf:"tracking"`
	Routing  RoutingConfig  `koanf:"routing"`
	Sync     SyncConfig     `koanf:"sync"`
	Breaker  BreakerConfig  `koanf:"breaker"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// TrackingConfig holds remote tracking API settings.
type TrackingConfig struct {
	// BaseURL is the API root; tracks are read from {BaseURL}/admin/location.
	BaseURL string `koanf:"base_url"`

	// Token is the bearer credential. It is opaque and never refreshed here.
	Token string `koanf:"token"`

	// UserID restricts loading to a single field agent when set.
	UserID string `koanf:"user_id"`

	// PageLimit is the page size requested from the API.
	PageLimit int `koanf:"page_limit"`

	// Lookback bounds the initial load (from = now - Lookback). Zero loads everything.
	Lookback time.Duration `koanf:"lookback"`

	// Timeout is the per-request HTTP client timeout.
	Timeout time.Duration `koanf:"timeout"`

	// MaxPages caps how many pages the initial load follows.
	MaxPages int `koanf:"max_pages"`
}

// RoutingConfig holds road routing service settings.
type RoutingConfig struct {
	BaseURL string `koanf:"base_url"`

	// RequestDelay is the minimum spacing between routing calls.
	RequestDelay time.Duration `koanf:"request_delay"`

	// MaxPoints is the waypoint budget per call; longer trails are simplified.
	MaxPoints int `koanf:"max_points"`

	// Timeout bounds a single routing call. A timeout is a transport error.
	Timeout time.Duration `koanf:"timeout"`

	// DefaultMode is used when a snap request names no travel mode.
	DefaultMode string `koanf:"default_mode"`
}

// SyncConfig holds live polling settings.
type SyncConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Interval        time.Duration `koanf:"interval"`
	MaxPagesPerTick int           `koanf:"max_pages_per_tick"`
}

// BreakerConfig configures the circuit breaker around the tracking API.
type BreakerConfig struct {
	Enabled bool `koanf:"enabled"`

	// MaxRequests allowed through while half-open.
	MaxRequests uint32 `koanf:"max_requests"`

	// Interval is the closed-state window after which counts reset.
	Interval time.Duration `koanf:"interval"`

	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration `koanf:"timeout"`

	// MinRequests is the sample size required before the breaker may trip.
	MinRequests uint32 `koanf:"min_requests"`

	// FailureRatio in (0,1] at which the breaker opens.
	FailureRatio float64 `koanf:"failure_ratio"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig holds CORS and rate limiting settings
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}
