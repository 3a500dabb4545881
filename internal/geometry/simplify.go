// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"

	"github.com/tomtom215/fieldtrail/internal/models"
)

const (
	// SimplifyToleranceFactor is k in tolerance = k * ln(len/maxPoints), in degrees.
	SimplifyToleranceFactor = 0.0001

	// SimplifyMargin is how far above maxPoints a simplified result may go.
	SimplifyMargin = 1

	// simplifyMaxWidenings bounds how often the tolerance is doubled before
	// falling back to stride sampling.
	simplifyMaxWidenings = 12
)

// Simplify reduces points to roughly maxPoints while keeping the shape.
//
// Inputs at or under the budget are returned unchanged. Otherwise
// Douglas-Peucker is applied; see the package documentation for the
// tolerance and fallback policy.
func Simplify(points []models.Coordinate, maxPoints int) []models.Coordinate {
	if maxPoints < 2 {
		maxPoints = 2
	}
	if len(points) <= maxPoints {
		return points
	}

	if out, ok := douglasPeucker(points, maxPoints); ok {
		return out
	}
	return StrideSample(points, maxPoints)
}

// douglasPeucker simplifies with a widening tolerance. ok is false when no
// tolerance within the widening budget produced a valid result.
func douglasPeucker(points []models.Coordinate, maxPoints int) (out []models.Coordinate, ok bool) {
	defer func() {
		// A panic inside the simplifier is treated as "unavailable".
		if r := recover(); r != nil {
			out, ok = nil, false
		}
	}()

	ls := ToLineString(points)
	tolerance := SimplifyToleranceFactor * math.Log(float64(len(points))/float64(maxPoints))
	if tolerance <= 0 {
		tolerance = SimplifyToleranceFactor
	}

	for i := 0; i <= simplifyMaxWidenings; i++ {
		// Simplifiers mutate their input, so each attempt gets a fresh clone.
		simplified, isLine := simplify.DouglasPeucker(tolerance).Simplify(ls.Clone()).(orb.LineString)
		if !isLine {
			return nil, false
		}
		if len(simplified) <= maxPoints+SimplifyMargin {
			if !keepsEndpoints(ls, simplified) {
				return nil, false
			}
			return FromLineString(simplified), true
		}
		tolerance *= 2
	}
	return nil, false
}

// keepsEndpoints reports whether simplified starts and ends where original does.
func keepsEndpoints(original, simplified orb.LineString) bool {
	if len(simplified) < 2 {
		return false
	}
	return simplified[0].Equal(original[0]) &&
		simplified[len(simplified)-1].Equal(original[len(original)-1])
}

// StrideSample keeps index 0, the last index, and every step-th index in
// between, where step = ceil(len/maxPoints). The result has at most
// maxPoints+1 elements.
func StrideSample(points []models.Coordinate, maxPoints int) []models.Coordinate {
	n := len(points)
	if maxPoints < 2 {
		maxPoints = 2
	}
	if n <= maxPoints {
		return points
	}

	step := int(math.Ceil(float64(n) / float64(maxPoints)))
	out := make([]models.Coordinate, 0, maxPoints+SimplifyMargin)
	out = append(out, points[0])
	for i := step; i < n-1; i += step {
		out = append(out, points[i])
	}
	out = append(out, points[n-1])
	return out
}
