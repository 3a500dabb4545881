// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package logging

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SyncLogger provides domain-specific logging for the live sync loop.
// Every line carries the component field and the tick correlation ID.
type SyncLogger struct {
	logger zerolog.Logger
}

// NewSyncLogger creates a SyncLogger on top of the global logger.
func NewSyncLogger() *SyncLogger {
	return &SyncLogger{logger: WithComponent("poller")}
}

// NewSyncLoggerWithLogger creates a SyncLogger on top of a custom logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSyncLoggerWithLogger(logger zerolog.Logger) *SyncLogger {
	return &SyncLogger{logger: logger.With().Str("component", "poller").Logger()}
}

func (s *SyncLogger) withContext(ctx context.Context) zerolog.Logger {
	logCtx := s.logger.With()
	if id := CorrelationIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("correlation_id", id)
	}
	return logCtx.Logger()
}

// LogStarted logs poller start.
func (s *SyncLogger) LogStarted(interval time.Duration) {
	s.logger.Info().Dur("interval", interval).Msg("[poller] started")
}

// LogStopped logs poller shutdown.
func (s *SyncLogger) LogStopped(ticks int) {
	s.logger.Info().Int("ticks", ticks).Msg("[poller] stopped")
}

// LogTick logs a completed tick.
func (s *SyncLogger) LogTick(ctx context.Context, from string, tracks int, elapsed time.Duration) {
	l := s.withContext(ctx)
	event := l.Debug()
	if tracks > 0 {
		event = l.Info()
	}
	event.Str("from", from).Int("tracks", tracks).Dur("elapsed", elapsed).Msg("[poller] tick complete")
}

// LogTickFailed logs a tick that failed with a transport or service error.
func (s *SyncLogger) LogTickFailed(ctx context.Context, err error) {
	l := s.withContext(ctx)
	l.Warn().Err(err).Msg("[poller] tick failed, will retry next interval")
}

// LogTickAborted logs a tick whose request was canceled. This is not a failure.
func (s *SyncLogger) LogTickAborted(ctx context.Context) {
	l := s.withContext(ctx)
	l.Debug().Msg("[poller] tick aborted")
}
