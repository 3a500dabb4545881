// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package sync

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/fieldtrail/internal/config"
	"github.com/tomtom215/fieldtrail/internal/logging"
	"github.com/tomtom215/fieldtrail/internal/models"
	"github.com/tomtom215/fieldtrail/internal/routing"
	"github.com/tomtom215/fieldtrail/internal/trail"
	"github.com/tomtom215/fieldtrail/internal/tracking"
)

// Update sources.
const (
	SourceInitial = "initial"
	SourcePoll    = "poll"
)

var (
	// ErrAlreadyRunning is returned by Start when the poller is active.
	ErrAlreadyRunning = errors.New("live sync already running")

	// ErrUnknownUser is returned when a snap names a user with no trail.
	ErrUnknownUser = errors.New("no trail for user")
)

// Update describes one merge into the session.
type Update struct {
	Source string                 `json:"source"`
	Tracks []models.LocationTrack `json:"-"`
	Result trail.MergeResult      `json:"result"`
	At     time.Time              `json:"at"`
}

// RouteSnapper is the part of routing.Snapper a session uses.
type RouteSnapper interface {
	SnapToRoads(ctx context.Context, points []models.Coordinate, mode models.TravelMode) (*models.SnappedRoute, error)
	BatchSnap(ctx context.Context, inputs []models.SnapInput, mode models.TravelMode, onProgress routing.ProgressFunc) (map[string]*models.SnappedRoute, error)
}

// SessionConfig selects the settings a session reads.
type SessionConfig struct {
	Tracking config.TrackingConfig
	Sync     config.SyncConfig
}

// Session is one trail tracking session: it owns a track map, its watermark
// and at most one live poller. Sessions share nothing, so any number can run
// side by side.
type Session struct {
	cfg     SessionConfig
	fetcher tracking.Fetcher
	snapper RouteSnapper
	agg     *trail.Aggregator
	log     *logging.SyncLogger

	mu        sync.Mutex
	stop      StopFunc
	listeners []func(Update)

	ready atomic.Bool
}

// NewSession creates a session with an empty aggregator.
func NewSession(cfg SessionConfig, fetcher tracking.Fetcher, snapper RouteSnapper) *Session {
	return &Session{
		cfg:     cfg,
		fetcher: fetcher,
		snapper: snapper,
		agg:     trail.NewAggregator(),
		log:     logging.NewSyncLogger(),
	}
}

// Aggregator exposes the session's track map for read access.
func (s *Session) Aggregator() *trail.Aggregator {
	return s.agg
}

// OnUpdate registers fn to be called after every merge. Listeners run
// synchronously on the merging goroutine and must not block.
func (s *Session) OnUpdate(fn func(Update)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Ready reports whether the initial load has completed.
func (s *Session) Ready() bool {
	return s.ready.Load()
}

// Running reports whether the live poller is active.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

// baseParams returns the fixed filters every fetch carries.
func (s *Session) baseParams() tracking.FetchParams {
	return tracking.FetchParams{
		UserID: s.cfg.Tracking.UserID,
		Limit:  s.cfg.Tracking.PageLimit,
	}
}

// Load performs the initial bulk fetch and merges the result. It may be
// called again; merging is idempotent.
func (s *Session) Load(ctx context.Context) (trail.MergeResult, error) {
	params := s.baseParams()
	if s.cfg.Tracking.Lookback > 0 {
		params.From = tracking.At(time.Now().Add(-s.cfg.Tracking.Lookback))
	}

	maxPages := s.cfg.Tracking.MaxPages
	if maxPages < 1 {
		maxPages = 1
	}

	start := time.Now()
	tracks, err := tracking.FetchAll(ctx, s.fetcher, params, maxPages)
	if err != nil {
		return trail.MergeResult{}, fmt.Errorf("initial load: %w", err)
	}

	res := s.apply(SourceInitial, tracks)
	s.ready.Store(true)

	logging.Info().
		Int("tracks", len(tracks)).
		Int("users", len(res.UserIDs)).
		Dur("elapsed", time.Since(start)).
		Msg("[session] initial load complete")
	return res, nil
}

// apply merges tracks and notifies listeners.
func (s *Session) apply(source string, tracks []models.LocationTrack) trail.MergeResult {
	res := s.agg.Merge(tracks)

	s.mu.Lock()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	u := Update{Source: source, Tracks: tracks, Result: res, At: time.Now().UTC()}
	for _, fn := range listeners {
		fn(u)
	}
	return res
}

// Start launches the live poller. The watermark is recomputed from merged
// state on every tick.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return ErrAlreadyRunning
	}

	s.stop = StartPoller(ctx, PollerConfig{
		Interval:        s.cfg.Sync.Interval,
		Fetcher:         s.fetcher,
		Params:          s.baseParams(),
		MaxPages:        s.cfg.Sync.MaxPagesPerTick,
		GetLastSyncedAt: s.agg.LastSyncedAt,
		OnUpdate: func(tracks []models.LocationTrack) {
			s.apply(SourcePoll, tracks)
		},
		Logger: s.log,
	})
	return nil
}

// Stop stops the live poller if it is running. Safe to call repeatedly.
func (s *Session) Stop() {
	s.mu.Lock()
	stop := s.stop
	s.stop = nil
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// Snap snaps one user's trail onto the road network. A nil route with a
// nil error means no route was available.
func (s *Session) Snap(ctx context.Context, userID string, mode models.TravelMode) (*models.SnappedRoute, error) {
	tr, ok := s.agg.Trail(userID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownUser, userID)
	}
	return s.snapper.SnapToRoads(ctx, tr.Coordinates(), mode)
}

// SnapAll batch-snaps the trails of userIDs, or of every user when userIDs
// is empty. Unknown users get a nil entry.
func (s *Session) SnapAll(ctx context.Context, userIDs []string, mode models.TravelMode, onProgress routing.ProgressFunc) (map[string]*models.SnappedRoute, error) {
	var inputs []models.SnapInput
	if len(userIDs) == 0 {
		for _, tr := range s.agg.Trails() {
			inputs = append(inputs, models.SnapInput{ID: tr.User.ID, Coordinates: tr.Coordinates()})
		}
	} else {
		for _, id := range userIDs {
			in := models.SnapInput{ID: id}
			if tr, ok := s.agg.Trail(id); ok {
				in.Coordinates = tr.Coordinates()
			}
			inputs = append(inputs, in)
		}
	}
	return s.snapper.BatchSnap(ctx, inputs, mode, onProgress)
}

// Serve implements suture.Service. It retries the initial load if it has
// not succeeded yet, runs the live poller when sync is enabled and stops it
// when ctx ends.
func (s *Session) Serve(ctx context.Context) error {
	if !s.Ready() {
		if _, err := s.Load(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logging.Warn().Err(err).Msg("[session] initial load failed, live sync will catch up")
		}
	}

	if s.cfg.Sync.Enabled {
		if err := s.Start(ctx); err != nil {
			return err
		}
		defer s.Stop()
	}

	<-ctx.Done()
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logging.
func (s *Session) String() string {
	return "trail-session"
}
