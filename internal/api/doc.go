// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

/*
Package api serves a trail session over HTTP with the chi router.

Endpoints (all under /api/v1):

	GET  /health/live              liveness
	GET  /health/ready             503 until the initial track load completes
	GET  /trails                   every user's trail, ordered by user id
	GET  /trails/{userID}          one trail
	GET  /trails.geojson           FeatureCollection, one feature per trail
	GET  /points?userId=&limit=    stored points in ascending time order
	GET  /heatmap                  trail points with intensity 1
	GET  /stats                    fleet summary, per-trail statistics, view cache counters
	POST /trails/{userID}/snap     snap one trail to roads (?mode=driving|walking|cycling)
	POST /snap/batch               {"mode": ..., "user_ids": [...]} sequential batch snap
	GET  /ws                       websocket: tracks_update, snap_progress

Prometheus metrics are exposed at /metrics.

Response Format:

Every JSON endpoint except trails.geojson returns the envelope

	{"success": true, "data": ..., "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 3}}
	{"success": false, "data": null, "error": {"code": "NOT_FOUND", "message": "..."}, "meta": {...}}

A snap that finds no route is not an error: it returns success with null
data and "code": "NO_ROUTE".

Caching:

Trails, GeoJSON, heatmap, stats and points views are derived from the whole
track store, so they are kept in a short-lived cache (internal/cache).
OnTracksMerged, registered as the session's update callback, clears it and
broadcasts tracks_update to websocket clients.

Middleware:

Request IDs, real IP extraction, panic recovery, CORS (go-chi/cors) and
Prometheus instrumentation apply to every route. Each route group has its
own httprate budget; snapping is limited harder than reads because every
snap spends routing service quota.
*/
package api
