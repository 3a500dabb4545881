// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

// Package main runs the fieldtrail server.
//
// Startup order:
//
//  1. Configuration (koanf: defaults, config.yaml, environment)
//  2. Logging
//  3. Tracking fetcher (with circuit breaker) and OSRM snapper
//  4. Trail session and the initial load
//  5. WebSocket hub, view cache, HTTP API
//  6. Supervisor tree, serving until SIGINT or SIGTERM
//
// A failed initial load does not abort startup: the session retries it
// when the supervisor starts it, and /api/v1/health/ready stays 503 until
// one succeeds.
//
// # Example
//
//	export TRACKING_BASE_URL=https://tracking.example.com/api
//	export TRACKING_TOKEN=...
//	export OSRM_URL=http://osrm:5000
//	export CORS_ORIGINS=https://map.example.com
//	./fieldtrail
package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tomtom215/fieldtrail/internal/api"
	"github.com/tomtom215/fieldtrail/internal/config"
	"github.com/tomtom215/fieldtrail/internal/logging"
	"github.com/tomtom215/fieldtrail/internal/metrics"
	"github.com/tomtom215/fieldtrail/internal/routing"
	"github.com/tomtom215/fieldtrail/internal/supervisor"
	"github.com/tomtom215/fieldtrail/internal/supervisor/services"
	tsync "github.com/tomtom215/fieldtrail/internal/sync"
	"github.com/tomtom215/fieldtrail/internal/tracking"
	ws "github.com/tomtom215/fieldtrail/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// initialLoadBudget bounds the blocking initial load relative to the
// tracking client's per-request timeout.
const initialLoadBudget = 4

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Service:   "fieldtrail",
		Version:   version,
	})

	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	logging.Info().
		Str("tracking_url", cfg.Tracking.BaseURL).
		Str("routing_url", cfg.Routing.BaseURL).
		Bool("live_sync", cfg.Sync.Enabled).
		Dur("sync_interval", cfg.Sync.Interval).
		Msg("Starting fieldtrail")

	if cfg.Tracking.UserID != "" {
		logging.Info().Str("user_id", cfg.Tracking.UserID).Msg("Restricted to a single field agent")
	}
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	if cfg.HasWildcardCORS() {
		logging.Warn().Msg("CORS allows any origin (CORS_ORIGINS=*); set explicit origins in production")
	}

	fetcher := tracking.NewFetcher(&cfg.Tracking, &cfg.Breaker, tracking.StaticToken(cfg.Tracking.Token))
	snapper := routing.NewSnapper(&cfg.Routing)

	session := tsync.NewSession(tsync.SessionConfig{
		Tracking: cfg.Tracking,
		Sync:     cfg.Sync,
	}, fetcher, snapper)

	hub := ws.NewHub()
	handler := api.NewHandler(cfg, session, hub)
	session.OnUpdate(func(u tsync.Update) {
		handler.OnTracksMerged(u.Source, u.Result, u.At)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	initialLoad(ctx, session, cfg)

	router := api.NewRouter(handler, api.NewChiMiddleware(api.NewChiMiddlewareConfig(cfg.Security)))
	server := services.NewHTTPServer(cfg.Server, router.SetupChi())

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	tree.AddSyncService(hub)
	tree.AddSyncService(handler.Cache())
	tree.AddSyncService(session)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", cfg.Server.Addr()).Msg("Supervisor tree starting")

	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		logging.Error().Err(err).Msg("Supervisor tree stopped unexpectedly")
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within shutdown timeout")
		}
	}

	logging.Info().Msg("Shutdown complete")
}

// initialLoad runs the first load before the API opens so readiness is
// usually green on the first probe.
func initialLoad(ctx context.Context, session *tsync.Session, cfg *config.Config) {
	budget := cfg.Tracking.Timeout * initialLoadBudget
	if budget <= 0 {
		budget = 2 * time.Minute
	}
	loadCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	start := time.Now()
	res, err := session.Load(loadCtx)
	if err != nil {
		logging.Warn().Err(err).Dur("budget", budget).Msg("Initial load failed, the session will retry under supervision")
		return
	}

	logging.Info().
		Int("tracks", res.Added).
		Int("users", len(res.UserIDs)).
		Dur("took", time.Since(start)).
		Msg("Initial load complete")
}
