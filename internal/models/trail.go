// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package models

import "time"

// TrailPoint is one position on a derived trail.
type TrailPoint struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Timestamp int64   `json:"timestamp"`
}

// Coordinate returns the point's position.
func (p TrailPoint) Coordinate() Coordinate {
	return Coordinate{Lat: p.Lat, Lng: p.Lng}
}

// Trail is the per-user, timestamp-ascending view over every known track of
// that user. It is always recomputed from the backing tracks, never patched.
type Trail struct {
	User UserRef      `json:"user"`
	Path []TrailPoint `json:"path"`
}

// Coordinates returns the trail's path as plain coordinates, in order.
func (t *Trail) Coordinates() []Coordinate {
	out := make([]Coordinate, len(t.Path))
	for i, p := range t.Path {
		out[i] = p.Coordinate()
	}
	return out
}

// HeatmapPoint is a weighted point for heatmap rendering.
// Intensity is uniformly 1; dwell time and accuracy are not weighted.
type HeatmapPoint struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Intensity float64 `json:"intensity"`
}

// Bounds is a lat/lng bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

// TrailStats summarizes one trail.
type TrailStats struct {
	User           UserRef    `json:"user"`
	Points         int        `json:"points"`
	Tracks         int        `json:"tracks"`
	DistanceMeters float64    `json:"distance_meters"`
	DistanceKm     float64    `json:"distance_km"`
	FirstSeen      *time.Time `json:"first_seen,omitempty"`
	LastSeen       *time.Time `json:"last_seen,omitempty"`
	DurationSec    float64    `json:"duration_seconds"`
	Bounds         *Bounds    `json:"bounds,omitempty"`

	// Segment speeds in m/s, over consecutive points with a positive time delta.
	MeanSpeed   float64 `json:"mean_speed_mps"`
	MedianSpeed float64 `json:"median_speed_mps"`
	MaxSpeed    float64 `json:"max_speed_mps"`
}

// TrailSummary aggregates statistics across every trail in a session.
type TrailSummary struct {
	Users              int          `json:"users"`
	Tracks             int          `json:"tracks"`
	UnassignedTracks   int          `json:"unassigned_tracks,omitempty"`
	Points             int          `json:"points"`
	TotalDistance      float64      `json:"total_distance_meters"`
	TotalDistanceHuman string       `json:"total_distance_human"`
	LastSyncedAt       *time.Time   `json:"last_synced_at,omitempty"`
	Trails             []TrailStats `json:"trails"`
}
