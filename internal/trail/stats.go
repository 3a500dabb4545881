// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package trail

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/montanaflynn/stats"

	"github.com/tomtom215/fieldtrail/internal/geometry"
	"github.com/tomtom215/fieldtrail/internal/models"
)

// Stats computes statistics for every trail, ordered by user id.
func (a *Aggregator) Stats() []models.TrailStats {
	return statsOf(a.snapshot().groups)
}

func statsOf(groups []userGroup) []models.TrailStats {
	out := make([]models.TrailStats, 0, len(groups))
	for _, g := range groups {
		out = append(out, trailStats(g.user, len(g.tracks), buildPath(g.tracks)))
	}
	return out
}

// Summary aggregates statistics across all trails from one snapshot, so the
// counts and the watermark always describe the same merged state. Tracks
// counts only tracks that belong to a trail; tracks without a user id are
// reported separately as UnassignedTracks.
func (a *Aggregator) Summary() models.TrailSummary {
	snap := a.snapshot()
	trails := statsOf(snap.groups)

	s := models.TrailSummary{
		Users:            len(trails),
		UnassignedTracks: snap.unassigned,
		LastSyncedAt:     snap.lastSyncedAt,
		Trails:           trails,
	}
	for i := range trails {
		s.Tracks += trails[i].Tracks
		s.Points += trails[i].Points
		s.TotalDistance += trails[i].DistanceMeters
	}
	s.TotalDistanceHuman = humanize.SIWithDigits(s.TotalDistance, 1, "m")
	return s
}

func trailStats(user models.UserRef, tracks int, path []models.TrailPoint) models.TrailStats {
	coords := make([]models.Coordinate, len(path))
	for i, p := range path {
		coords[i] = p.Coordinate()
	}

	st := models.TrailStats{
		User:           user,
		Points:         len(path),
		Tracks:         tracks,
		DistanceMeters: geometry.TrailLength(coords),
		DistanceKm:     geometry.TrailLengthKm(coords),
		Bounds:         geometry.BoundsOf(coords),
	}
	if len(path) == 0 {
		return st
	}

	first := time.UnixMilli(path[0].Timestamp).UTC()
	last := time.UnixMilli(path[len(path)-1].Timestamp).UTC()
	st.FirstSeen = &first
	st.LastSeen = &last
	st.DurationSec = last.Sub(first).Seconds()

	speeds := segmentSpeeds(path)
	if len(speeds) > 0 {
		data := stats.Float64Data(speeds)
		st.MeanSpeed = statOr(data.Mean, 0)
		st.MedianSpeed = statOr(data.Median, 0)
		st.MaxSpeed = statOr(data.Max, 0)
	}
	return st
}

// segmentSpeeds returns m/s for consecutive points with a positive time delta.
func segmentSpeeds(path []models.TrailPoint) []float64 {
	var speeds []float64
	for i := 1; i < len(path); i++ {
		dt := float64(path[i].Timestamp-path[i-1].Timestamp) / 1000
		if dt <= 0 {
			continue
		}
		d := geometry.HaversineMeters(path[i-1].Coordinate(), path[i].Coordinate())
		speeds = append(speeds, d/dt)
	}
	return speeds
}

func statOr(fn func() (float64, error), def float64) float64 {
	v, err := fn()
	if err != nil {
		return def
	}
	return v
}
