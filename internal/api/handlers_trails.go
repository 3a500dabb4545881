// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/fieldtrail/internal/cache"
	"github.com/tomtom215/fieldtrail/internal/logging"
	"github.com/tomtom215/fieldtrail/internal/models"
	"github.com/tomtom215/fieldtrail/internal/tracking"
	"github.com/tomtom215/fieldtrail/internal/validation"
)

type userPath struct {
	UserID string `validate:"required,userid"`
}

type pointsQuery struct {
	UserID string `validate:"omitempty,userid"`
	Limit  int    `validate:"gte=0,lte=100000"`
}

// Cache keys for views derived from the whole aggregator.
const (
	keyTrails  = "trails"
	keyGeoJSON = "trails.geojson"
	keyHeatmap = "heatmap"
	keyStats   = "stats"
)

func (h *Handler) trails() []models.Trail {
	v, _ := h.cache.GetOrCompute(keyTrails, func() (any, error) {
		return h.session.Aggregator().Trails(), nil
	})
	return v.([]models.Trail)
}

// ListTrails returns every user's trail, ordered by user id.
func (h *Handler) ListTrails(w http.ResponseWriter, r *http.Request) {
	trails := h.trails()
	NewResponseWriter(w, r).SuccessList(trails, len(trails))
}

// GetTrail returns one user's trail.
func (h *Handler) GetTrail(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	req := userPath{UserID: chi.URLParam(r, "userID")}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(verr)
		return
	}

	t, ok := h.session.Aggregator().Trail(req.UserID)
	if !ok {
		rw.NotFound("No trail for user " + req.UserID)
		return
	}
	rw.Success(t)
}

// TrailsGeoJSON returns every trail as a GeoJSON FeatureCollection. The
// body is bare GeoJSON, not the API envelope, so map libraries can load it
// directly.
func (h *Handler) TrailsGeoJSON(w http.ResponseWriter, r *http.Request) {
	v, err := h.cache.GetOrCompute(keyGeoJSON, func() (any, error) {
		return trailsFeatureCollection(h.trails()).MarshalJSON()
	})
	if err != nil {
		NewResponseWriter(w, r).InternalError(err)
		return
	}
	body := v.([]byte)
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("[api] geojson write failed")
	}
}

// Points returns stored location points, optionally for one user, in
// ascending timestamp order.
func (h *Handler) Points(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	q := r.URL.Query()
	req := pointsQuery{UserID: q.Get("userId")}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			rw.BadRequest("limit must be an integer")
			return
		}
		req.Limit = n
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(verr)
		return
	}

	v, _ := h.cache.GetOrCompute(cache.GenerateKey("points", req), func() (any, error) {
		points := tracking.FlattenAndSort(h.session.Aggregator().Tracks(req.UserID))
		if req.Limit > 0 && len(points) > req.Limit {
			points = points[:req.Limit]
		}
		return points, nil
	})
	points := v.([]models.FlatPoint)
	rw.SuccessList(points, len(points))
}

// Heatmap returns every trail point with uniform intensity.
func (h *Handler) Heatmap(w http.ResponseWriter, r *http.Request) {
	v, _ := h.cache.GetOrCompute(keyHeatmap, func() (any, error) {
		return h.session.Aggregator().HeatmapPoints(), nil
	})
	pts := v.([]models.HeatmapPoint)
	NewResponseWriter(w, r).SuccessList(pts, len(pts))
}

// StatsResponse is the fleet summary plus the counters of the view cache
// that served it.
type StatsResponse struct {
	models.TrailSummary
	Cache cache.Stats `json:"cache"`
}

// Stats returns the fleet summary with per-trail statistics. The summary is
// cached; the cache counters are read fresh on every call.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	v, _ := h.cache.GetOrCompute(keyStats, func() (any, error) {
		return h.session.Aggregator().Summary(), nil
	})
	NewResponseWriter(w, r).Success(StatsResponse{
		TrailSummary: v.(models.TrailSummary),
		Cache:        h.cache.GetStats(),
	})
}
