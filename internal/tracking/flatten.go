// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package tracking

import (
	"sort"

	"github.com/tomtom215/fieldtrail/internal/models"
)

// FlattenAndSort returns every point of tracks as one timestamp-ascending
// stream, each tagged with its track id, user id and the track's syncedAt.
// Points with equal timestamps keep their input order.
func FlattenAndSort(tracks []models.LocationTrack) []models.FlatPoint {
	n := 0
	for i := range tracks {
		n += len(tracks[i].Locations)
	}

	points := make([]models.FlatPoint, 0, n)
	for i := range tracks {
		t := &tracks[i]
		for _, loc := range t.Locations {
			points = append(points, models.FlatPoint{
				LocationPoint: loc,
				TrackID:       t.ID,
				UserID:        t.User.ID,
				SyncedAt:      t.SyncedAt,
			})
		}
	}

	sort.SliceStable(points, func(a, b int) bool {
		return points[a].TS < points[b].TS
	})
	return points
}
