// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/fieldtrail/internal/config"
	"github.com/tomtom215/fieldtrail/internal/logging"
	"github.com/tomtom215/fieldtrail/internal/models"
	"github.com/tomtom215/fieldtrail/internal/routing"
	tsync "github.com/tomtom215/fieldtrail/internal/sync"
	"github.com/tomtom215/fieldtrail/internal/tracking"
	ws "github.com/tomtom215/fieldtrail/internal/websocket"
)

//nolint:gochecknoinits // quiet logs for the whole package
func init() {
	logging.Init(logging.Config{Level: "error", Format: "json", Output: io.Discard})
}

// staticFetcher serves one page of tracks.
type staticFetcher struct {
	tracks []models.LocationTrack
	err    error
}

func (f *staticFetcher) FetchTracks(ctx context.Context, params tracking.FetchParams) (*models.TracksPage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.TracksPage{Success: true, Data: f.tracks}, nil
}

// stubSnapper returns route for every trail with two or more points,
// or err when set. It records the modes it was asked for.
type stubSnapper struct {
	mu    sync.Mutex
	err   error
	none  bool
	modes []models.TravelMode
}

func (s *stubSnapper) SnapToRoads(ctx context.Context, points []models.Coordinate, mode models.TravelMode) (*models.SnappedRoute, error) {
	s.mu.Lock()
	s.modes = append(s.modes, mode)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if s.none || len(points) < 2 {
		return nil, nil
	}
	coords := make([][2]float64, len(points))
	for i, p := range points {
		coords[i] = [2]float64{p.Lng, p.Lat}
	}
	return &models.SnappedRoute{Coordinates: coords, DistanceMeters: 1234.5, DurationSeconds: 600, Provider: routing.Provider}, nil
}

func (s *stubSnapper) BatchSnap(ctx context.Context, inputs []models.SnapInput, mode models.TravelMode, onProgress routing.ProgressFunc) (map[string]*models.SnappedRoute, error) {
	out := make(map[string]*models.SnappedRoute, len(inputs))
	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		out[in.ID], _ = s.SnapToRoads(ctx, in.Coordinates, mode)
		if onProgress != nil {
			onProgress(i+1, len(inputs))
		}
	}
	return out, nil
}

func (s *stubSnapper) lastMode() models.TravelMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.modes) == 0 {
		return ""
	}
	return s.modes[len(s.modes)-1]
}

func point(lat, lng float64, ts int64) models.LocationPoint {
	return models.LocationPoint{Latitude: lat, Longitude: lng, TS: ts}
}

// fixtureTracks: u1 walks three points across two tracks, u2 has one fix.
func fixtureTracks() []models.LocationTrack {
	return []models.LocationTrack{
		{ID: "t2", User: models.UserRef{ID: "u1", DisplayName: "Ada Lovelace", Embedded: true, Region: "north"},
			Locations: []models.LocationPoint{point(52.5205, 13.4060, 3000)}},
		{ID: "t1", User: models.UserRef{ID: "u1", DisplayName: "Ada Lovelace", Embedded: true, Region: "north"},
			Locations: []models.LocationPoint{point(52.5200, 13.4050, 1000), point(52.5202, 13.4055, 2000)}},
		{ID: "t3", User: models.UserRef{ID: "u2", DisplayName: "u2"},
			Locations: []models.LocationPoint{point(48.8566, 2.3522, 1500)}},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Routing:  config.RoutingConfig{DefaultMode: "walking"},
		Tracking: config.TrackingConfig{PageLimit: 100, MaxPages: 1},
		Security: config.SecurityConfig{
			CORSOrigins:       []string{"http://map.example"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: true,
		},
	}
}

type testAPI struct {
	server  *httptest.Server
	session *tsync.Session
	fetcher *staticFetcher
	snapper *stubSnapper
	hub     *ws.Hub
	handler *Handler
}

type apiOptions struct {
	noLoad   bool
	withHub  bool
	snapper  *stubSnapper
	mutateFn func(*config.Config)
}

func newTestAPI(t *testing.T, opts apiOptions) *testAPI {
	t.Helper()
	cfg := testConfig()
	if opts.mutateFn != nil {
		opts.mutateFn(cfg)
	}

	snapper := opts.snapper
	if snapper == nil {
		snapper = &stubSnapper{}
	}
	fetcher := &staticFetcher{tracks: fixtureTracks()}
	session := tsync.NewSession(tsync.SessionConfig{Tracking: cfg.Tracking, Sync: cfg.Sync}, fetcher, snapper)
	if !opts.noLoad {
		if _, err := session.Load(context.Background()); err != nil {
			t.Fatalf("Load: %v", err)
		}
	}

	var hub *ws.Hub
	if opts.withHub {
		hub = ws.NewHub()
		ctx, cancel := context.WithCancel(context.Background())
		stopped := make(chan struct{})
		go func() {
			_ = hub.Serve(ctx)
			close(stopped)
		}()
		t.Cleanup(func() {
			cancel()
			<-stopped
		})
	}

	handler := NewHandler(cfg, session, hub)
	session.OnUpdate(func(u tsync.Update) {
		handler.OnTracksMerged(u.Source, u.Result, u.At)
	})
	router := NewRouter(handler, NewChiMiddleware(NewChiMiddlewareConfig(cfg.Security)))
	srv := httptest.NewServer(router.SetupChi())
	t.Cleanup(srv.Close)

	return &testAPI{server: srv, session: session, fetcher: fetcher, snapper: snapper, hub: hub, handler: handler}
}

// envelope mirrors APIResponse with raw data for per-test decoding.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func (a *testAPI) do(t *testing.T, method, path, body string) (*http.Response, envelope) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, a.server.URL+path, rdr)
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := a.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("%s %s: decode envelope %q: %v", method, path, raw, err)
	}
	return resp, env
}

func decodeData(t *testing.T, env envelope, v any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("status = %d, want %d", resp.StatusCode, want)
	}
}

func expectErrorCode(t *testing.T, env envelope, want string) {
	t.Helper()
	if env.Success {
		t.Fatal("expected success=false")
	}
	if env.Error == nil || env.Error.Code != want {
		t.Fatalf("error = %+v, want code %s", env.Error, want)
	}
}
