// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

/*
Package cache holds derived read views (GeoJSON, heatmap, fleet stats)
between track merges.

The API computes those views from the whole aggregator on every request,
which is linear in the stored points. Entries live for a short TTL and are
cleared whenever the session merges new tracks:

	c := cache.New("api", 30*time.Second)
	session.OnUpdate(func(tsync.Update) { c.Clear() })

	v, err := c.GetOrCompute("stats", func() (any, error) {
	    return agg.Summary(), nil
	})

A Cache is also a suture.Service; supervising it sweeps expired entries
periodically. Hits, misses and entry counts are exported as
cache_hits_total, cache_misses_total and cache_entries labelled by name.
*/
package cache
