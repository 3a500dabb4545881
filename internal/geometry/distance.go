// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package geometry

import (
	"math"

	"github.com/tomtom215/fieldtrail/internal/models"
)

const (
	// EarthRadiusMeters is the sphere radius used for all metre distances.
	EarthRadiusMeters = 6371000.0

	// EarthRadiusKm is the sphere radius used for display distances.
	EarthRadiusKm = 6371.0
)

// haversine returns the central angle between a and b in radians.
func haversine(a, b models.Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng

	// Rounding can push h a hair above 1 for antipodal points.
	if h > 1 {
		h = 1
	}
	return 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// HaversineMeters returns the great-circle distance between a and b in metres.
func HaversineMeters(a, b models.Coordinate) float64 {
	return EarthRadiusMeters * haversine(a, b)
}

// HaversineKm returns the great-circle distance between a and b in kilometres.
func HaversineKm(a, b models.Coordinate) float64 {
	return EarthRadiusKm * haversine(a, b)
}

// TrailLength returns the summed HaversineMeters distance along points.
// Returns 0 for fewer than two points.
func TrailLength(points []models.Coordinate) float64 {
	if len(points) < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += HaversineMeters(points[i-1], points[i])
	}
	return total
}

// TrailLengthKm is TrailLength on the kilometre sphere, for display values.
func TrailLengthKm(points []models.Coordinate) float64 {
	if len(points) < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += HaversineKm(points[i-1], points[i])
	}
	return total
}
