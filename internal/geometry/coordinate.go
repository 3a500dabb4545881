// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package geometry

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/tomtom215/fieldtrail/internal/models"
)

// IsValid reports whether c is a finite coordinate within WGS84 bounds.
func IsValid(c models.Coordinate) bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// FilterValid returns the valid coordinates of cs in their original order.
// The result never aliases cs.
func FilterValid(cs []models.Coordinate) []models.Coordinate {
	out := make([]models.Coordinate, 0, len(cs))
	for _, c := range cs {
		if IsValid(c) {
			out = append(out, c)
		}
	}
	return out
}

// ToLineString converts coordinates to an orb.LineString ([lng, lat] order).
func ToLineString(cs []models.Coordinate) orb.LineString {
	ls := make(orb.LineString, len(cs))
	for i, c := range cs {
		ls[i] = orb.Point{c.Lng, c.Lat}
	}
	return ls
}

// FromLineString converts an orb.LineString back to coordinates.
func FromLineString(ls orb.LineString) []models.Coordinate {
	out := make([]models.Coordinate, len(ls))
	for i, p := range ls {
		out[i] = models.Coordinate{Lat: p.Lat(), Lng: p.Lon()}
	}
	return out
}

// BoundsOf returns the bounding box of cs, or nil when cs is empty.
func BoundsOf(cs []models.Coordinate) *models.Bounds {
	if len(cs) == 0 {
		return nil
	}
	b := ToLineString(cs).Bound()
	return &models.Bounds{
		MinLat: b.Min.Lat(),
		MinLng: b.Min.Lon(),
		MaxLat: b.Max.Lat(),
		MaxLng: b.Max.Lon(),
	}
}
