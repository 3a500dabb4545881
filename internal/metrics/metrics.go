// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Tracking API Metrics
	TrackingFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracking_fetch_total",
			Help: "Total number of location track page fetches",
		},
		[]string{"outcome"}, // "success", "http_error", "transport_error", "canceled", "rejected"
	)

	TrackingFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tracking_fetch_duration_seconds",
			Help:    "Duration of location track page fetches in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	TrackingTracksFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tracking_tracks_fetched_total",
			Help: "Total number of location tracks received from the tracking API",
		},
	)

	// Live Sync Metrics
	PollTicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_poll_ticks_total",
			Help: "Total number of live sync poll ticks by outcome",
		},
		[]string{"outcome"}, // "success", "error", "aborted"
	)

	PollTickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sync_poll_tick_duration_seconds",
			Help:    "Duration of a single live sync poll tick in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	SyncLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sync_last_success_timestamp",
			Help: "Unix timestamp of the last successful poll tick",
		},
	)

	// Trail Aggregation Metrics
	TracksMerged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trail_tracks_merged_total",
			Help: "Total number of tracks merged into the aggregator",
		},
		[]string{"result"}, // "added", "replaced"
	)

	TrailTracksStored = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trail_tracks_stored",
			Help: "Current number of distinct tracks held by the aggregator",
		},
	)

	TrailUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trail_users",
			Help: "Current number of users with at least one track",
		},
	)

	// Routing Metrics
	SnapRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routing_snap_requests_total",
			Help: "Total number of road snapping requests by outcome",
		},
		[]string{"mode", "outcome"}, // outcome: "success", "no_route", "skipped", "error"
	)

	SnapDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "routing_snap_duration_seconds",
			Help:    "Duration of routing service calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"mode"},
	)

	SnapInputPoints = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "routing_snap_input_points",
			Help:    "Number of points sent to the routing service after simplification",
			Buckets: []float64{2, 5, 10, 25, 50, 75, 100, 101},
		},
	)

	SnapRateLimitWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "routing_rate_limit_wait_seconds",
			Help:    "Time spent waiting for the routing request budget",
			Buckets: []float64{0, 0.1, 0.5, 1, 1.5, 3, 5, 10},
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total requests through circuit breaker by result",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Response Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of connected websocket clients",
		},
	)

	WSMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of websocket messages broadcast by type",
		},
		[]string{"type"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordTrackingFetch records a tracking API page fetch.
func RecordTrackingFetch(outcome string, duration time.Duration, tracks int) {
	TrackingFetchTotal.WithLabelValues(outcome).Inc()
	TrackingFetchDuration.Observe(duration.Seconds())
	if tracks > 0 {
		TrackingTracksFetched.Add(float64(tracks))
	}
}

// RecordPollTick records the outcome of one live sync tick.
func RecordPollTick(outcome string, duration time.Duration) {
	PollTicksTotal.WithLabelValues(outcome).Inc()
	PollTickDuration.Observe(duration.Seconds())
	if outcome == "success" {
		SyncLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordMerge records a merge into the aggregator and the resulting store size.
func RecordMerge(added, replaced, storedTracks, users int) {
	if added > 0 {
		TracksMerged.WithLabelValues("added").Add(float64(added))
	}
	if replaced > 0 {
		TracksMerged.WithLabelValues("replaced").Add(float64(replaced))
	}
	TrailTracksStored.Set(float64(storedTracks))
	TrailUsers.Set(float64(users))
}

// RecordSnap records a road snapping attempt.
// A zero duration means no routing call was made.
func RecordSnap(mode, outcome string, duration time.Duration) {
	SnapRequestsTotal.WithLabelValues(mode, outcome).Inc()
	if duration > 0 {
		SnapDuration.WithLabelValues(mode).Observe(duration.Seconds())
	}
}

// RecordSnapInput records the number of points sent to the routing service.
func RecordSnapInput(points int) {
	SnapInputPoints.Observe(float64(points))
}

// RecordRateLimitWait records time spent waiting on the routing budget.
func RecordRateLimitWait(wait time.Duration) {
	SnapRateLimitWait.Observe(wait.Seconds())
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCacheLookup records a hit or miss on the named cache.
func RecordCacheLookup(cache string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cache).Inc()
	} else {
		CacheMisses.WithLabelValues(cache).Inc()
	}
}

// SetCacheEntries sets the entry count of the named cache.
func SetCacheEntries(cache string, n int) {
	CacheEntries.WithLabelValues(cache).Set(float64(n))
}

// RecordWSMessage records a broadcast websocket message.
func RecordWSMessage(msgType string) {
	WSMessagesSent.WithLabelValues(msgType).Inc()
}

// SetWSConnections sets the current websocket client count.
func SetWSConnections(count int) {
	WSConnections.Set(float64(count))
}
