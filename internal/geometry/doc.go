// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

/*
Package geometry provides the pure geometric kernel used by the trail engine.

Nothing in this package performs I/O. Functions never panic on bad input:
invalid coordinates are filtered, empty inputs produce zero values.

Functions:

  - HaversineMeters: great-circle distance on a 6,371,000 m sphere
  - HaversineKm: the same formula on a 6371 km sphere, used for display values
  - TrailLength: sum of consecutive HaversineMeters distances
  - IsValid / FilterValid: coordinate validity (finite, |lat| <= 90, |lng| <= 180)
  - Simplify: Douglas-Peucker reduction to a point budget, with stride-sampling fallback

The metre and kilometre variants are deliberately separate functions. Each
caller picks one precision and uses it consistently; values from the two are
never mixed in one computation.

Simplification:

Douglas-Peucker runs on an orb.LineString in [lng, lat] degree space via
github.com/paulmach/orb/simplify. The starting tolerance is derived from the
reduction ratio:

	tolerance = SimplifyToleranceFactor * ln(len(points) / maxPoints)

If the result still exceeds the budget the tolerance is widened a bounded
number of times; if that still fails (or the result is degenerate) the input
is stride-sampled instead. Output always keeps the first and last input points
and never exceeds maxPoints + SimplifyMargin.
*/
package geometry
