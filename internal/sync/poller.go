// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package sync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tomtom215/fieldtrail/internal/logging"
	"github.com/tomtom215/fieldtrail/internal/metrics"
	"github.com/tomtom215/fieldtrail/internal/models"
	"github.com/tomtom215/fieldtrail/internal/tracking"
)

// DefaultPollInterval is used when PollerConfig.Interval is not set.
const DefaultPollInterval = 5 * time.Second

// PollerConfig configures one live poller.
type PollerConfig struct {
	// Interval is the pause between the end of one tick and the start of the next.
	Interval time.Duration

	// Fetcher reads track pages. Required.
	Fetcher tracking.Fetcher

	// Params carries the fixed filters (user id, page size). From and Page
	// are overwritten on every tick.
	Params tracking.FetchParams

	// MaxPages caps how many pages one tick follows. Defaults to 1.
	MaxPages int

	// GetLastSyncedAt returns the watermark of already-merged state, or nil
	// when nothing is known yet. It is called at the start of every tick.
	GetLastSyncedAt func() *time.Time

	// OnUpdate receives the tracks of a tick that returned any. It runs on
	// the poller goroutine and must not call the poller's StopFunc.
	OnUpdate func(tracks []models.LocationTrack)

	// Logger defaults to logging.NewSyncLogger().
	Logger *logging.SyncLogger
}

// StopFunc stops a poller. It aborts any in-flight request, waits for the
// poller goroutine to exit and is safe to call more than once. Once it
// returns, OnUpdate is never invoked again.
type StopFunc func()

// ErrNoFetcher is returned by Validate when PollerConfig.Fetcher is nil.
var ErrNoFetcher = errors.New("poller requires a fetcher")

// Validate checks the config for required fields.
func (c *PollerConfig) Validate() error {
	if c.Fetcher == nil {
		return ErrNoFetcher
	}
	if c.OnUpdate == nil {
		return errors.New("poller requires an OnUpdate callback")
	}
	return nil
}

// poller is a two-state (running, stopped) polling loop. Ticks are strictly
// serialized: the next tick is scheduled only after the previous one has
// finished, so at most one request is outstanding.
type poller struct {
	cfg PollerConfig
	log *logging.SyncLogger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// deliverMu serializes OnUpdate against stop.
	deliverMu sync.Mutex
	stopped   bool
	stopOnce  sync.Once

	ticks int
}

// StartPoller starts polling in a new goroutine and returns its StopFunc.
// Tick 0 runs immediately. Canceling ctx has the same effect as calling the
// StopFunc, except that the call does not wait.
//
// StartPoller panics if cfg does not validate.
func StartPoller(ctx context.Context, cfg PollerConfig) StopFunc {
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.MaxPages < 1 {
		cfg.MaxPages = 1
	}

	p := &poller{
		cfg:  cfg,
		log:  cfg.Logger,
		done: make(chan struct{}),
	}
	if p.log == nil {
		p.log = logging.NewSyncLogger()
	}
	p.ctx, p.cancel = context.WithCancel(ctx)

	go p.run()
	return p.stop
}

func (p *poller) run() {
	defer close(p.done)
	p.log.LogStarted(p.cfg.Interval)
	defer func() { p.log.LogStopped(p.ticks) }()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-timer.C:
			p.tick()
			p.ticks++
			timer.Reset(p.cfg.Interval)
		}
	}
}

// tick performs one fetch-and-deliver cycle. Errors never escape it.
func (p *poller) tick() {
	ctx := logging.ContextWithNewCorrelationID(p.ctx)
	start := time.Now()

	params := p.cfg.Params
	params.Page = 1
	params.From = tracking.Bound{}
	if p.cfg.GetLastSyncedAt != nil {
		if last := p.cfg.GetLastSyncedAt(); last != nil {
			params.From = tracking.At(*last)
		}
	}

	tracks, err := tracking.FetchAll(ctx, p.cfg.Fetcher, params, p.cfg.MaxPages)
	elapsed := time.Since(start)

	if err != nil {
		if tracking.IsCanceled(err) || p.ctx.Err() != nil {
			p.log.LogTickAborted(ctx)
			metrics.RecordPollTick("aborted", elapsed)
			return
		}
		p.log.LogTickFailed(ctx, err)
		metrics.RecordPollTick("error", elapsed)
		return
	}

	if len(tracks) > 0 && !p.deliver(tracks) {
		p.log.LogTickAborted(ctx)
		metrics.RecordPollTick("aborted", elapsed)
		return
	}

	p.log.LogTick(ctx, params.From.ISO(), len(tracks), elapsed)
	metrics.RecordPollTick("success", elapsed)
}

// deliver hands tracks to OnUpdate unless the poller has been stopped.
func (p *poller) deliver(tracks []models.LocationTrack) bool {
	p.deliverMu.Lock()
	defer p.deliverMu.Unlock()

	if p.stopped || p.ctx.Err() != nil {
		return false
	}
	p.cfg.OnUpdate(tracks)
	return true
}

func (p *poller) stop() {
	p.stopOnce.Do(func() {
		// Taking deliverMu waits out a delivery already in progress.
		p.deliverMu.Lock()
		p.stopped = true
		p.deliverMu.Unlock()

		p.cancel()
		<-p.done
	})
}
