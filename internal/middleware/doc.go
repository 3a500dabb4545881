// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

/*
Package middleware provides chi-compatible HTTP middleware for the fieldtrail API.

Every middleware has the standard func(http.Handler) http.Handler shape so it
can be mounted with chi's Router.Use.

Key Components:

  - RequestID: assigns or propagates X-Request-ID and seeds the logging
    context with request and correlation IDs
  - PrometheusMetrics: request counts, durations and in-flight gauge,
    labelled by chi route pattern so path parameters never explode label
    cardinality
  - Compression: pooled gzip for trail and GeoJSON payloads

Middleware Stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Compression)

Websocket upgrades bypass Compression; PrometheusMetrics wraps the writer
with chi's WrapResponseWriter, which keeps http.Hijacker available.
*/
package middleware
