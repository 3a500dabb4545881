// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

/*
Package tracking reads uploaded location tracks from the remote tracking API.

The API exposes one paginated, filterable listing:

	GET {baseURL}/admin/location?userId=&from=&to=&page=&limit=
	Authorization: Bearer <token>

	{"success": true, "data": [LocationTrack...], "meta": {"page", "limit", "totalDocs", "totalPages"}}

Client.FetchTracks fetches exactly one page. Client.FetchAll follows pages for
the initial bulk load. FlattenAndSort turns a set of tracks into one
timestamp-ascending point stream.

# Errors

  - *FetchError: the API answered with a non-2xx status. StatusCode and the
    raw Body are preserved so callers can branch on 401.
  - IsCanceled(err): the request was aborted through its context. Callers
    must not treat this as a failure.
  - ErrCircuitOpen: the CircuitBreakerClient rejected the call without
    reaching the API.
  - Anything else is a transport error (DNS, refused, timeout, bad JSON).

There is no retry. A caller that wants another attempt calls again.
*/
package tracking
