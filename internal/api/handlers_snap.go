// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/fieldtrail/internal/logging"
	"github.com/tomtom215/fieldtrail/internal/models"
	"github.com/tomtom215/fieldtrail/internal/routing"
	tsync "github.com/tomtom215/fieldtrail/internal/sync"
	"github.com/tomtom215/fieldtrail/internal/validation"
	ws "github.com/tomtom215/fieldtrail/internal/websocket"
)

// maxBatchBody caps the batch snap request body.
const maxBatchBody = 64 << 10

type snapRequest struct {
	UserID string `validate:"required,userid"`
	Mode   string `validate:"omitempty,travelmode"`
}

type batchSnapRequest struct {
	Mode    string   `json:"mode" validate:"omitempty,travelmode"`
	UserIDs []string `json:"user_ids" validate:"max=500,dive,userid"`
}

// BatchSnapResponse is the data of a batch snap. Routes has one entry per
// requested user; users without a route map to null.
type BatchSnapResponse struct {
	Mode    models.TravelMode               `json:"mode"`
	Routes  map[string]*models.SnappedRoute `json:"routes"`
	Snapped int                             `json:"snapped"`
	NoRoute int                             `json:"no_route"`
}

// mode resolves a validated mode string, falling back to the default.
func (h *Handler) mode(s string) models.TravelMode {
	if s == "" {
		return h.defaultMode
	}
	m, err := routing.ParseTravelMode(s)
	if err != nil {
		return h.defaultMode
	}
	return m
}

// SnapTrail snaps one user's trail onto the road network. A trail the
// routing service cannot route is a 200 with null data and code NO_ROUTE.
func (h *Handler) SnapTrail(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	req := snapRequest{UserID: chi.URLParam(r, "userID"), Mode: r.URL.Query().Get("mode")}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(verr)
		return
	}
	r = r.WithContext(logging.ContextWithUserID(r.Context(), req.UserID))

	route, err := h.session.Snap(r.Context(), req.UserID, h.mode(req.Mode))
	switch {
	case errors.Is(err, tsync.ErrUnknownUser):
		rw.NotFound("No trail for user " + req.UserID)
	case err != nil:
		h.snapFailed(rw, r, err)
	case route == nil:
		rw.SuccessEmpty(CodeNoRoute)
	default:
		rw.Success(route)
	}
}

// SnapBatch snaps several trails sequentially within the routing budget,
// pushing snap_progress to websocket clients. An empty user_ids snaps
// every known trail.
func (h *Handler) SnapBatch(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req batchSnapRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBatchBody)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		rw.BadRequest("Invalid JSON body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(verr)
		return
	}

	mode := h.mode(req.Mode)
	corrID := logging.CorrelationIDFromContext(r.Context())
	progress := func(done, total int) {
		h.pushProgress(ws.SnapStatusRunning, done, total, mode, corrID)
	}

	routes, err := h.session.SnapAll(r.Context(), req.UserIDs, mode, progress)
	if err != nil {
		h.pushProgress(ws.SnapStatusCanceled, len(routes), len(routes), mode, corrID)
		h.snapFailed(rw, r, err)
		return
	}

	resp := BatchSnapResponse{Mode: mode, Routes: routes}
	for _, rt := range routes {
		if rt != nil {
			resp.Snapped++
		} else {
			resp.NoRoute++
		}
	}
	h.pushProgress(ws.SnapStatusCompleted, len(routes), len(routes), mode, corrID)
	rw.Success(resp)
}

func (h *Handler) pushProgress(status string, done, total int, mode models.TravelMode, corrID string) {
	if h.hub == nil {
		return
	}
	h.hub.BroadcastSnapProgress(ws.SnapProgressData{
		Status:        status,
		Done:          done,
		Total:         total,
		Mode:          string(mode),
		CorrelationID: corrID,
	})
}

// snapFailed maps a routing error to a response. A canceled request gets a
// best-effort 503; anything else is an upstream failure.
func (h *Handler) snapFailed(rw *ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) || r.Context().Err() != nil {
		rw.Error(http.StatusServiceUnavailable, ErrCodeRequestCanceled, "Request canceled")
		return
	}
	logging.Ctx(r.Context()).Warn().Err(err).Msg("[api] snap failed")
	rw.Error(http.StatusBadGateway, ErrCodeRoutingFailed, "Routing service unavailable")
}
