// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

/*
Package trail owns the authoritative trackID -> LocationTrack map of a
tracking session and derives per-user trails from it.

Merge is the only mutation. It upserts by track id, so replaying a track
(the live poller's inclusive watermark does this routinely) changes nothing.

Every read (Trails, HeatmapPoints, TotalDistance, Stats) is recomputed from
the map alone. No incremental counters are kept. Paths are always sorted by
timestamp ascending on derivation, because tracks arrive out of upload order
and points inside a track are not guaranteed sorted. Points with equal
timestamps are ordered by track id, then by their position in the track.

Points whose coordinates are invalid are left out of every derived view but
the tracks that carry them are still stored.
*/
package trail
