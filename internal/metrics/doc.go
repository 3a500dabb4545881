// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

/*
Package metrics provides Prometheus metrics collection and export for observability.

Collectors are registered with the default registry through promauto and
exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

Tracking API:
  - tracking_fetch_total: Page fetches (counter)
    Labels: outcome (success, http_error, transport_error, canceled, rejected)
  - tracking_fetch_duration_seconds: Fetch latency (histogram)
  - tracking_tracks_fetched_total: Tracks received (counter)

Live Sync:
  - sync_poll_ticks_total: Poll ticks (counter)
    Labels: outcome (success, error, aborted)
  - sync_poll_tick_duration_seconds: Tick duration (histogram)
  - sync_last_success_timestamp: Unix timestamp of last successful tick (gauge)

Trails:
  - trail_tracks_merged_total: Merged tracks (counter)
    Labels: result (added, replaced)
  - trail_tracks_stored: Distinct tracks held (gauge)
  - trail_users: Users with at least one track (gauge)

Routing:
  - routing_snap_requests_total: Snap attempts (counter)
    Labels: mode, outcome (success, no_route, skipped, error)
  - routing_snap_duration_seconds: Routing call latency (histogram)
  - routing_snap_input_points: Points per routing call (histogram)
  - routing_rate_limit_wait_seconds: Time spent waiting for the request budget (histogram)

Circuit Breaker:
  - circuit_breaker_state: Current state (gauge)
    Labels: name
    Values: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total: Requests by result (counter)
  - circuit_breaker_consecutive_failures: Consecutive failures (gauge)
  - circuit_breaker_transitions_total: State transitions (counter)

View Cache:
  - cache_hits_total, cache_misses_total: Lookups (counter)
  - cache_entries: Stored entries (gauge)
    Labels: cache

HTTP and WebSocket:
  - api_requests_total, api_request_duration_seconds, api_active_requests
  - websocket_connections, websocket_messages_sent_total

# Usage

	start := time.Now()
	tracks, err := client.FetchTracks(ctx, params)
	metrics.RecordTrackingFetch("success", time.Since(start), len(tracks.Data))

# Thread Safety

All collectors are safe for concurrent use.
*/
package metrics
