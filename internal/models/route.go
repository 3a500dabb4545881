// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package models

// TravelMode is the caller-facing travel mode for road snapping.
type TravelMode string

const (
	TravelModeDriving TravelMode = "driving"
	TravelModeWalking TravelMode = "walking"
	TravelModeCycling TravelMode = "cycling"
)

// SnappedRoute is the road-aligned result of one routing call.
// Coordinates are [lng, lat] pairs as returned by the routing service.
type SnappedRoute struct {
	Coordinates     [][2]float64 `json:"coordinates"`
	DistanceMeters  float64      `json:"distance_meters"`
	DurationSeconds float64      `json:"duration_seconds"`
	Provider        string       `json:"provider"`
}

// SnapInput is one trail submitted to a batch snap.
type SnapInput struct {
	ID          string       `json:"id"`
	Coordinates []Coordinate `json:"coordinates"`
}
