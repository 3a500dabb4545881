// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Tracking.BaseURL = "https://api.example.com/api"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults with base url", func(*Config) {}, ""},
		{"missing tracking url", func(c *Config) { c.Tracking.BaseURL = "" }, "TRACKING_BASE_URL is required"},
		{"bad tracking scheme", func(c *Config) { c.Tracking.BaseURL = "ftp://x" }, "TRACKING_BASE_URL is invalid"},
		{"tracking url with query", func(c *Config) { c.Tracking.BaseURL = "https://x.example.com?a=1" }, "TRACKING_BASE_URL is invalid"},
		{"page limit zero", func(c *Config) { c.Tracking.PageLimit = 0 }, "TRACKING_PAGE_LIMIT"},
		{"negative lookback", func(c *Config) { c.Tracking.Lookback = -time.Hour }, "TRACKING_LOOKBACK"},
		{"routing url missing host", func(c *Config) { c.Routing.BaseURL = "http://" }, "ROUTING_BASE_URL"},
		{"routing max points", func(c *Config) { c.Routing.MaxPoints = 1 }, "ROUTING_MAX_POINTS"},
		{"unknown travel mode", func(c *Config) { c.Routing.DefaultMode = "flying" }, "ROUTING_DEFAULT_MODE"},
		{"sync interval too short", func(c *Config) { c.Sync.Interval = 10 * time.Millisecond }, "SYNC_INTERVAL"},
		{"sync disabled skips interval", func(c *Config) { c.Sync.Enabled = false; c.Sync.Interval = 0 }, ""},
		{"breaker ratio", func(c *Config) { c.Breaker.FailureRatio = 1.5 }, "BREAKER_FAILURE_RATIO"},
		{"breaker disabled skips ratio", func(c *Config) { c.Breaker.Enabled = false; c.Breaker.FailureRatio = 0 }, ""},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, "HTTP_PORT"},
		{"rate limit requests", func(c *Config) { c.Security.RateLimitReqs = 0 }, "RATE_LIMIT_REQUESTS"},
		{"rate limit disabled", func(c *Config) { c.Security.RateLimitDisabled = true; c.Security.RateLimitReqs = 0 }, ""},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want substring %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestServerAddr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 9000}
	if got := s.Addr(); got != "127.0.0.1:9000" {
		t.Errorf("Addr() = %q", got)
	}
}

func TestHasWildcardCORS(t *testing.T) {
	cfg := validConfig()
	if !cfg.HasWildcardCORS() {
		t.Error("default CORS should be wildcard")
	}
	cfg.Security.CORSOrigins = []string{"https://ops.example.com"}
	if cfg.HasWildcardCORS() {
		t.Error("explicit origins should not report wildcard")
	}
}
