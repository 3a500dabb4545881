// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

/*
Package config provides centralized configuration management for Fieldtrail.

Configuration is loaded with koanf v2 in three layers: struct defaults, an
optional YAML file, then environment variables. The YAML file is taken from
CONFIG_PATH when set, otherwise the first of DefaultConfigPaths that exists.

# Environment Variables

Tracking API:
  - TRACKING_BASE_URL: API root (required)
  - TRACKING_TOKEN: Bearer token
  - TRACKING_USER_ID: Restrict to one field agent
  - TRACKING_PAGE_LIMIT: Page size (default: 100)
  - TRACKING_LOOKBACK: Initial load window (default: 24h, 0 = everything)
  - TRACKING_TIMEOUT: HTTP timeout (default: 30s)
  - TRACKING_MAX_PAGES: Initial load page cap (default: 50)

Routing:
  - OSRM_URL / ROUTING_BASE_URL: Routing service root
  - ROUTING_REQUEST_DELAY: Spacing between calls (default: 1500ms)
  - ROUTING_MAX_POINTS: Waypoint budget (default: 100)
  - ROUTING_TIMEOUT: HTTP timeout (default: 30s)
  - ROUTING_DEFAULT_MODE: driving, walking or cycling (default: driving)

Live Sync:
  - SYNC_ENABLED (default: true)
  - SYNC_INTERVAL (default: 5s)
  - SYNC_MAX_PAGES_PER_TICK (default: 5)

Circuit Breaker:
  - BREAKER_ENABLED, BREAKER_MAX_REQUESTS, BREAKER_INTERVAL, BREAKER_TIMEOUT,
    BREAKER_MIN_REQUESTS, BREAKER_FAILURE_RATIO

Server and Security:
  - HTTP_HOST (default: 0.0.0.0), HTTP_PORT (default: 8080), SHUTDOWN_TIMEOUT (default: 15s)
  - CORS_ORIGINS: Comma-separated origins (default: *)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: Include caller location (default: false)

# Example

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    log.Fatal(err)
	}
	client := tracking.NewClient(cfg.Tracking)
*/
package config
