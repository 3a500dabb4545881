// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package trail

import (
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/fieldtrail/internal/geometry"
	"github.com/tomtom215/fieldtrail/internal/metrics"
	"github.com/tomtom215/fieldtrail/internal/models"
)

// MergeResult reports what one Merge call changed.
type MergeResult struct {
	Added    int `json:"added"`
	Replaced int `json:"replaced"`

	// UserIDs lists the distinct users touched by the merge, sorted.
	UserIDs []string `json:"user_ids"`
}

// Aggregator holds the tracks of one session. It is safe for concurrent use.
type Aggregator struct {
	mu     sync.RWMutex
	tracks map[string]models.LocationTrack
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{tracks: make(map[string]models.LocationTrack)}
}

// Merge upserts tracks by id. Tracks without an id are ignored.
func (a *Aggregator) Merge(tracks []models.LocationTrack) MergeResult {
	var res MergeResult
	users := make(map[string]struct{})

	a.mu.Lock()
	for i := range tracks {
		t := tracks[i]
		if t.ID == "" {
			continue
		}
		if _, exists := a.tracks[t.ID]; exists {
			res.Replaced++
		} else {
			res.Added++
		}
		t.Locations = append([]models.LocationPoint(nil), t.Locations...)
		a.tracks[t.ID] = t
		if t.User.ID != "" {
			users[t.User.ID] = struct{}{}
		}
	}
	stored := len(a.tracks)
	userCount := a.countUsersLocked()
	a.mu.Unlock()

	res.UserIDs = make([]string, 0, len(users))
	for id := range users {
		res.UserIDs = append(res.UserIDs, id)
	}
	sort.Strings(res.UserIDs)

	metrics.RecordMerge(res.Added, res.Replaced, stored, userCount)
	return res
}

func (a *Aggregator) countUsersLocked() int {
	users := make(map[string]struct{})
	for _, t := range a.tracks {
		if t.User.ID != "" {
			users[t.User.ID] = struct{}{}
		}
	}
	return len(users)
}

// Len returns the number of stored tracks.
func (a *Aggregator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.tracks)
}

// Tracks returns copies of the stored tracks ordered by id. A non-empty
// userID restricts the result to that user.
func (a *Aggregator) Tracks(userID string) []models.LocationTrack {
	a.mu.RLock()
	out := make([]models.LocationTrack, 0, len(a.tracks))
	for _, t := range a.tracks {
		if userID != "" && t.User.ID != userID {
			continue
		}
		t.Locations = append([]models.LocationPoint(nil), t.Locations...)
		out = append(out, t)
	}
	a.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LastSyncedAt returns the most recent syncedAt over all tracks, or nil when
// no track carries one. It is the live poller's watermark.
func (a *Aggregator) LastSyncedAt() *time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastSyncedLocked()
}

func (a *Aggregator) lastSyncedLocked() *time.Time {
	var latest *time.Time
	for _, t := range a.tracks {
		if t.SyncedAt != nil && (latest == nil || t.SyncedAt.After(*latest)) {
			latest = t.SyncedAt
		}
	}
	if latest == nil {
		return nil
	}
	v := *latest
	return &v
}

// userGroup is one user's tracks, ordered by track id.
type userGroup struct {
	user   models.UserRef
	tracks []models.LocationTrack
}

// snapshot is one consistent read of the track map.
type snapshot struct {
	groups       []userGroup
	unassigned   int
	lastSyncedAt *time.Time
}

// snapshot reads the map under a single lock into per-user groups ordered
// by user id. Tracks without a user id are only counted.
func (a *Aggregator) snapshot() snapshot {
	var snap snapshot
	byUser := make(map[string]*userGroup)

	a.mu.RLock()
	for _, t := range a.tracks {
		if t.User.ID == "" {
			snap.unassigned++
			continue
		}
		g, ok := byUser[t.User.ID]
		if !ok {
			g = &userGroup{user: t.User}
			byUser[t.User.ID] = g
		}
		g.user = preferRef(g.user, t.User)
		g.tracks = append(g.tracks, t)
	}
	snap.lastSyncedAt = a.lastSyncedLocked()
	a.mu.RUnlock()

	snap.groups = make([]userGroup, 0, len(byUser))
	for _, g := range byUser {
		sort.Slice(g.tracks, func(i, j int) bool { return g.tracks[i].ID < g.tracks[j].ID })
		snap.groups = append(snap.groups, *g)
	}
	sort.Slice(snap.groups, func(i, j int) bool { return snap.groups[i].user.ID < snap.groups[j].user.ID })
	return snap
}

// groupByUser returns the per-user groups of a fresh snapshot.
func (a *Aggregator) groupByUser() []userGroup {
	return a.snapshot().groups
}

// preferRef keeps the richer of two refs to the same user. An embedded user
// document beats a bare id; among equals the lexically larger display name
// wins so the choice does not depend on map order.
func preferRef(current, candidate models.UserRef) models.UserRef {
	if candidate.Embedded != current.Embedded {
		if candidate.Embedded {
			return candidate
		}
		return current
	}
	if candidate.DisplayName > current.DisplayName {
		return candidate
	}
	return current
}

// buildPath flattens a group's valid points and sorts them by timestamp.
func buildPath(tracks []models.LocationTrack) []models.TrailPoint {
	n := 0
	for i := range tracks {
		n += len(tracks[i].Locations)
	}
	path := make([]models.TrailPoint, 0, n)
	for i := range tracks {
		for _, loc := range tracks[i].Locations {
			if !geometry.IsValid(loc.Coordinate()) {
				continue
			}
			path = append(path, models.TrailPoint{Lat: loc.Latitude, Lng: loc.Longitude, Timestamp: loc.TS})
		}
	}
	sort.SliceStable(path, func(i, j int) bool { return path[i].Timestamp < path[j].Timestamp })
	return path
}

// Trails derives one timestamp-ascending trail per user, ordered by user id.
func (a *Aggregator) Trails() []models.Trail {
	groups := a.groupByUser()
	trails := make([]models.Trail, 0, len(groups))
	for _, g := range groups {
		trails = append(trails, models.Trail{User: g.user, Path: buildPath(g.tracks)})
	}
	return trails
}

// Trail derives the trail of a single user.
func (a *Aggregator) Trail(userID string) (*models.Trail, bool) {
	for _, g := range a.groupByUser() {
		if g.user.ID == userID {
			return &models.Trail{User: g.user, Path: buildPath(g.tracks)}, true
		}
	}
	return nil, false
}

// HeatmapPoints flattens every trail point with intensity 1.
func (a *Aggregator) HeatmapPoints() []models.HeatmapPoint {
	trails := a.Trails()
	n := 0
	for i := range trails {
		n += len(trails[i].Path)
	}
	out := make([]models.HeatmapPoint, 0, n)
	for i := range trails {
		for _, p := range trails[i].Path {
			out = append(out, models.HeatmapPoint{Lat: p.Lat, Lng: p.Lng, Intensity: 1})
		}
	}
	return out
}

// TotalDistance sums the length in metres of every trail.
func (a *Aggregator) TotalDistance() float64 {
	var total float64
	for _, t := range a.Trails() {
		total += geometry.TrailLength(t.Coordinates())
	}
	return total
}
