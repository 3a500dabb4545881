// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

/*
Package routing snaps raw GPS trails onto the road network through an
OSRM-compatible routing service.

	GET {base}/route/v1/{car|foot|bike}/{lng,lat;lng,lat;...}?overview=full&geometries=geojson&steps=false

Results:

  - (*SnappedRoute, nil): the service found a route.
  - (nil, nil): no route. Fewer than two valid points, a non-2xx status, a
    code other than "Ok", an empty route list or an undecodable body all end
    up here. This is a normal outcome, not a failure.
  - (nil, error): transport failure (DNS, refused, timeout) or cancellation.

Every call, single or batched, passes through one token-bucket limiter
(golang.org/x/time/rate, burst 1) so successive requests are at least
RequestDelay apart. BatchSnap is strictly sequential, additionally waits
RequestDelay after each trail completes, and turns per-trail errors into nil
entries. Nothing is retried.
*/
package routing
