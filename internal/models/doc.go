// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

/*
Package models defines data structures for the Fieldtrail application.

This package is the single source of truth for the shapes that flow between
the tracking API client, the trail aggregator, the routing snapper and the
HTTP/WebSocket surface.

Key Components:

  - Coordinate: A latitude/longitude pair with a validity invariant
  - LocationPoint: One GPS sample, timestamp normalized to epoch milliseconds
  - LocationTrack: One immutable batch of points synced by a device
  - UserRef: The normalized owner of a track (raw id or embedded user object)
  - Trail: The derived, time-ordered per-user path
  - HeatmapPoint: Uniform-intensity point for heatmap consumers
  - SnappedRoute: Road-aligned geometry returned by the routing service

Normalization Boundary:

All polymorphic wire shapes are resolved inside UnmarshalJSON so consuming
code never branches on the raw JSON type:

  - LocationPoint.timestamp may be epoch-ms (number), an ISO-8601 string, or
    a numeric string. It is parsed once into TS and never mutated afterwards.
  - LocationTrack.userId may be a string id or an embedded user object.
    It is resolved once into a UserRef.
  - LocationTrack.id may be sent as "id" or "_id".

Usage Example:

	var page models.TracksPage
	if err := json.Unmarshal(body, &page); err != nil {
	    return err
	}
	for _, track := range page.Data {
	    fmt.Println(track.ID, track.User.DisplayName, len(track.Locations))
	}
*/
package models
