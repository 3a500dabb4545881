// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package config

import (
	"fmt"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateTracking(); err != nil {
		return err
	}

	if err := c.validateRouting(); err != nil {
		return err
	}

	if err := c.validateSync(); err != nil {
		return err
	}

	if err := c.validateBreaker(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateTracking validates the tracking API configuration
func (c *Config) validateTracking() error {
	if c.Tracking.BaseURL == "" {
		return fmt.Errorf("TRACKING_BASE_URL is required")
	}
	if err := validateHTTPURL(c.Tracking.BaseURL, "TRACKING_BASE_URL"); err != nil {
		return fmt.Errorf("TRACKING_BASE_URL is invalid: %w", err)
	}
	if c.Tracking.PageLimit < 1 || c.Tracking.PageLimit > 1000 {
		return fmt.Errorf("TRACKING_PAGE_LIMIT must be between 1 and 1000")
	}
	if c.Tracking.MaxPages < 1 {
		return fmt.Errorf("TRACKING_MAX_PAGES must be at least 1")
	}
	if c.Tracking.Lookback < 0 {
		return fmt.Errorf("TRACKING_LOOKBACK must not be negative")
	}
	if c.Tracking.Timeout <= 0 {
		return fmt.Errorf("TRACKING_TIMEOUT must be positive")
	}
	return nil
}

// validTravelModes mirrors the modes the routing package understands
var validTravelModes = map[string]bool{
	"driving": true,
	"walking": true,
	"cycling": true,
}

// validateRouting validates the routing service configuration
func (c *Config) validateRouting() error {
	if err := validateHTTPURL(c.Routing.BaseURL, "ROUTING_BASE_URL"); err != nil {
		return fmt.Errorf("ROUTING_BASE_URL is invalid: %w", err)
	}
	if c.Routing.RequestDelay < 0 {
		return fmt.Errorf("ROUTING_REQUEST_DELAY must not be negative")
	}
	if c.Routing.MaxPoints < 2 {
		return fmt.Errorf("ROUTING_MAX_POINTS must be at least 2")
	}
	if c.Routing.Timeout <= 0 {
		return fmt.Errorf("ROUTING_TIMEOUT must be positive")
	}
	if !validTravelModes[c.Routing.DefaultMode] {
		return fmt.Errorf("ROUTING_DEFAULT_MODE must be one of: driving, walking, cycling")
	}
	return nil
}

// validateSync validates live sync settings (only if enabled)
func (c *Config) validateSync() error {
	if !c.Sync.Enabled {
		return nil
	}
	if c.Sync.Interval < 500*time.Millisecond {
		return fmt.Errorf("SYNC_INTERVAL must be at least 500ms")
	}
	if c.Sync.MaxPagesPerTick < 1 {
		return fmt.Errorf("SYNC_MAX_PAGES_PER_TICK must be at least 1")
	}
	return nil
}

// validateBreaker validates circuit breaker settings (only if enabled)
func (c *Config) validateBreaker() error {
	if !c.Breaker.Enabled {
		return nil
	}
	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		return fmt.Errorf("BREAKER_FAILURE_RATIO must be in (0, 1]")
	}
	if c.Breaker.MinRequests < 1 {
		return fmt.Errorf("BREAKER_MIN_REQUESTS must be at least 1")
	}
	if c.Breaker.Timeout <= 0 {
		return fmt.Errorf("BREAKER_TIMEOUT must be positive")
	}
	return nil
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// Rate limit bounds
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

// validateSecurity validates security configuration
func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}

	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// HasWildcardCORS reports whether CORS is configured with a wildcard origin.
func (c *Config) HasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
