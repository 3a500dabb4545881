// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/fieldtrail/internal/cache"
	"github.com/tomtom215/fieldtrail/internal/config"
	"github.com/tomtom215/fieldtrail/internal/logging"
	"github.com/tomtom215/fieldtrail/internal/models"
	"github.com/tomtom215/fieldtrail/internal/routing"
	"github.com/tomtom215/fieldtrail/internal/trail"
	ws "github.com/tomtom215/fieldtrail/internal/websocket"
)

// TrailSession is the part of sync.Session the API serves from.
type TrailSession interface {
	Aggregator() *trail.Aggregator
	Ready() bool
	Running() bool
	Snap(ctx context.Context, userID string, mode models.TravelMode) (*models.SnappedRoute, error)
	SnapAll(ctx context.Context, userIDs []string, mode models.TravelMode, onProgress routing.ProgressFunc) (map[string]*models.SnappedRoute, error)
}

// viewCacheTTL bounds how long a derived view outlives its last merge if
// an invalidation is ever missed.
const viewCacheTTL = 30 * time.Second

// Handler holds the dependencies of every endpoint.
type Handler struct {
	session     TrailSession
	hub         *ws.Hub
	cache       *cache.Cache
	defaultMode models.TravelMode
	origins     []string
	startTime   time.Time
}

// NewHandler creates a handler. hub may be nil, in which case the
// websocket endpoint answers 503 and batch progress is not pushed.
func NewHandler(cfg *config.Config, session TrailSession, hub *ws.Hub) *Handler {
	mode := models.TravelModeDriving
	if m, err := routing.ParseTravelMode(cfg.Routing.DefaultMode); err == nil {
		mode = m
	}
	return &Handler{
		session:     session,
		hub:         hub,
		cache:       cache.New("api", viewCacheTTL),
		defaultMode: mode,
		origins:     cfg.Security.CORSOrigins,
		startTime:   time.Now(),
	}
}

// Cache returns the view cache so it can be supervised.
func (h *Handler) Cache() *cache.Cache {
	return h.cache
}

// OnTracksMerged is the session update callback: it drops cached views
// and tells websocket clients which trails changed.
func (h *Handler) OnTracksMerged(source string, res trail.MergeResult, at time.Time) {
	h.cache.Clear()
	if h.hub != nil && len(res.UserIDs) > 0 {
		h.hub.BroadcastTracksUpdate(source, res.UserIDs, res.Added, res.Replaced, at)
	}
}

func (h *Handler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  4096,
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin:      h.checkWebSocketOrigin,
	}
}

// checkWebSocketOrigin accepts configured origins. Browsers always send
// Origin, so a missing header is rejected.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Str("remote_addr", r.RemoteAddr).Msg("[api] websocket rejected: missing Origin")
		return false
	}
	for _, allowed := range h.origins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	logging.Warn().Str("origin", origin).Msg("[api] websocket rejected: origin not allowed")
	return false
}
