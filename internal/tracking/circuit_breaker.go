// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package tracking

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/fieldtrail/internal/config"
	"github.com/tomtom215/fieldtrail/internal/logging"
	"github.com/tomtom215/fieldtrail/internal/metrics"
	"github.com/tomtom215/fieldtrail/internal/models"
)

// breakerName labels the tracking API breaker in logs and metrics.
const breakerName = "tracking-api"

// CircuitBreakerClient wraps a Fetcher with a circuit breaker.
//
// Only transport errors and 5xx responses count as failures. A 4xx (including
// 401) means the API is up and answering, and a canceled request says nothing
// about the API at all.
type CircuitBreakerClient struct {
	client Fetcher
	cb     *gobreaker.CircuitBreaker[*models.TracksPage]
	name   string
}

// NewCircuitBreakerClient wraps client using cfg's thresholds.
func NewCircuitBreakerClient(client Fetcher, cfg *config.BreakerConfig) *CircuitBreakerClient {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(0)

	minRequests := cfg.MinRequests
	ratio := cfg.FailureRatio

	cb := gobreaker.NewCircuitBreaker[*models.TracksPage](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= ratio
			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		IsSuccessful: countsAsSuccess,
		IsExcluded:   IsCanceled,

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &CircuitBreakerClient{client: client, cb: cb, name: breakerName}
}

// countsAsSuccess decides which errors leave the breaker's failure count alone.
func countsAsSuccess(err error) bool {
	if err == nil || IsCanceled(err) {
		return true
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return !fe.IsServerError()
	}
	return false
}

// FetchTracks fetches one page with circuit breaker protection.
// A rejected call returns an error matching ErrCircuitOpen.
func (cbc *CircuitBreakerClient) FetchTracks(ctx context.Context, params FetchParams) (*models.TracksPage, error) {
	page, err := cbc.cb.Execute(func() (*models.TracksPage, error) {
		return cbc.client.FetchTracks(ctx, params)
	})

	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(0)
		return page, nil
	case isBreakerRejection(err):
		metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "rejected").Inc()
		metrics.RecordTrackingFetch("rejected", 0, 0)
		logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		return nil, &circuitOpenError{cause: err}
	default:
		if !countsAsSuccess(err) {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "failure").Inc()
			counts := cbc.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(float64(counts.ConsecutiveFailures))
		}
		return nil, err
	}
}

// FetchAll follows pages through the breaker.
func (cbc *CircuitBreakerClient) FetchAll(ctx context.Context, params FetchParams, maxPages int) ([]models.LocationTrack, error) {
	return FetchAll(ctx, cbc, params, maxPages)
}

// State returns the breaker's current state as a string.
func (cbc *CircuitBreakerClient) State() string {
	return stateToString(cbc.cb.State())
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// breakerTimeoutFloor keeps a misconfigured zero timeout from pinning the breaker open forever.
const breakerTimeoutFloor = time.Second

// NewFetcher builds the Fetcher used by the rest of the service: a plain
// Client, wrapped in a breaker when cfg enables one.
func NewFetcher(tcfg *config.TrackingConfig, bcfg *config.BreakerConfig, tokens TokenSource) Fetcher {
	client := NewClient(tcfg, tokens)
	if bcfg == nil || !bcfg.Enabled {
		return client
	}
	b := *bcfg
	if b.Timeout < breakerTimeoutFloor {
		b.Timeout = breakerTimeoutFloor
	}
	return NewCircuitBreakerClient(client, &b)
}
