// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

/*
Package sync keeps a trail session in step with the tracking API.

A Session owns one trail.Aggregator, its watermark and at most one live
poller. Load does the bulk initial fetch (following pages up to
tracking.max_pages); Start launches a poller that asks for tracks newer
than the latest stored timestamp on every tick and merges what it gets.
Sessions share no state, so tests and multi-tenant callers can run several
side by side.

The poller is a two-state loop:

	stopped --StartPoller--> running --StopFunc / ctx--> stopped

Ticks never overlap: the next one is scheduled only after the previous
fetch and merge finished. A failing tick is logged and counted
(poll_ticks_total{outcome="error"}) and the loop carries on; an open
circuit breaker surfaces the same way. Once StopFunc returns no further
update is delivered.

Listeners registered with OnUpdate see every merge, initial or live:

	session.OnUpdate(func(u sync.Update) {
	    handler.OnTracksMerged(u.Source, u.Result, u.At)
	})

Session implements suture.Service. Serve retries the initial load if it
has not yet succeeded, then runs the poller until the supervisor stops it.
*/
package sync
