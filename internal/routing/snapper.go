// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package routing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/fieldtrail/internal/config"
	"github.com/tomtom215/fieldtrail/internal/geometry"
	"github.com/tomtom215/fieldtrail/internal/logging"
	"github.com/tomtom215/fieldtrail/internal/metrics"
	"github.com/tomtom215/fieldtrail/internal/models"
)

const (
	// Provider tags every SnappedRoute produced here.
	Provider = "osrm"

	// DefaultMaxPoints is the waypoint cap of the public OSRM demo server.
	DefaultMaxPoints = 100

	// DefaultRequestDelay keeps batch snapping near 40 requests per minute.
	DefaultRequestDelay = 1500 * time.Millisecond

	// maxErrorBodySize caps how much of an error response is logged.
	maxErrorBodySize = 4 * 1024
)

// Snapper converts raw point sequences into road-aligned routes.
// It is safe for concurrent use; all calls share one rate limiter.
type Snapper struct {
	baseURL   string
	client    *http.Client
	limiter   *rate.Limiter
	delay     time.Duration
	maxPoints int
}

// NewSnapper creates a Snapper from routing configuration.
func NewSnapper(cfg *config.RoutingConfig) *Snapper {
	maxPoints := cfg.MaxPoints
	if maxPoints < 2 {
		maxPoints = DefaultMaxPoints
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	limit := rate.Inf
	if cfg.RequestDelay > 0 {
		limit = rate.Every(cfg.RequestDelay)
	}

	return &Snapper{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		client:    &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(limit, 1),
		delay:     max(cfg.RequestDelay, 0),
		maxPoints: maxPoints,
	}
}

// osrmResponse is the subset of the OSRM route response that is consumed.
type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Geometry struct {
			Coordinates [][2]float64 `json:"coordinates"`
		} `json:"geometry"`
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

// SnapToRoads snaps points onto the road network for mode.
//
// Invalid coordinates are dropped first. With fewer than two valid points
// the result is (nil, nil). Longer inputs are simplified to the waypoint
// budget. See the package documentation for the result contract.
func (s *Snapper) SnapToRoads(ctx context.Context, points []models.Coordinate, mode models.TravelMode) (*models.SnappedRoute, error) {
	profile, err := Profile(mode)
	if err != nil {
		return nil, err
	}

	valid := geometry.FilterValid(points)
	if len(valid) < 2 {
		metrics.RecordSnap(string(mode), "insufficient", 0)
		return nil, nil
	}
	waypoints := geometry.Simplify(valid, s.maxPoints)
	metrics.RecordSnapInput(len(waypoints))

	waitStart := time.Now()
	if err := s.limiter.Wait(ctx); err != nil {
		metrics.RecordSnap(string(mode), "canceled", 0)
		return nil, fmt.Errorf("routing rate limit wait: %w", err)
	}
	metrics.RecordRateLimitWait(time.Since(waitStart))

	start := time.Now()
	route, outcome, err := s.route(ctx, profile, waypoints)
	metrics.RecordSnap(string(mode), outcome, time.Since(start))

	if err == nil && route == nil {
		logging.Debug().
			Str("mode", string(mode)).
			Int("waypoints", len(waypoints)).
			Str("outcome", outcome).
			Msg("[routing] no route")
	}
	return route, err
}

// route issues one routing request. outcome labels the result for metrics.
func (s *Snapper) route(ctx context.Context, profile string, waypoints []models.Coordinate) (*models.SnappedRoute, string, error) {
	reqURL := s.buildURL(profile, waypoints)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, "transport_error", fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, "canceled", fmt.Errorf("routing request failed: %w", err)
		}
		return nil, "transport_error", fmt.Errorf("routing request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		logging.Warn().
			Int("status", resp.StatusCode).
			Str("body", string(body)).
			Msg("[routing] routing service returned non-success status")
		return nil, "http_error", nil
	}

	var parsed osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		logging.Warn().Err(err).Msg("[routing] failed to decode routing response")
		return nil, "decode_error", nil
	}

	if parsed.Code != "Ok" {
		logging.Warn().
			Str("code", parsed.Code).
			Str("message", parsed.Message).
			Msg("[routing] routing service found no route")
		return nil, "no_route", nil
	}
	if len(parsed.Routes) == 0 {
		logging.Warn().Msg("[routing] routing service returned no routes")
		return nil, "no_route", nil
	}

	best := parsed.Routes[0]
	return &models.SnappedRoute{
		Coordinates:     best.Geometry.Coordinates,
		DistanceMeters:  best.Distance,
		DurationSeconds: best.Duration,
		Provider:        Provider,
	}, "success", nil
}

// buildURL serializes waypoints as lng,lat;lng,lat;... under the profile path.
func (s *Snapper) buildURL(profile string, waypoints []models.Coordinate) string {
	var b strings.Builder
	b.WriteString(s.baseURL)
	b.WriteString("/route/v1/")
	b.WriteString(profile)
	b.WriteByte('/')
	for i, c := range waypoints {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(strconv.FormatFloat(c.Lng, 'f', -1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(c.Lat, 'f', -1, 64))
	}
	b.WriteString("?overview=full&geometries=geojson&steps=false")
	return b.String()
}
