// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package api

import (
	"net/http"
	"time"
)

// HealthLive is the liveness probe: the process is up and serving HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]any{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady is the readiness probe. It fails until the initial track
// load has completed.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	status := map[string]any{
		"ready":     h.session.Ready(),
		"live_sync": h.session.Running(),
		"tracks":    h.session.Aggregator().Len(),
		"uptime":    time.Since(h.startTime).Seconds(),
	}
	if h.hub != nil {
		status["ws_clients"] = h.hub.ClientCount()
	}
	if !h.session.Ready() {
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Initial track load has not completed", status)
		return
	}
	rw.Success(status)
}
