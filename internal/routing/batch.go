// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package routing

import (
	"context"
	"time"

	"github.com/tomtom215/fieldtrail/internal/logging"
	"github.com/tomtom215/fieldtrail/internal/models"
)

// ProgressFunc is called after each trail of a batch with the number of
// trails processed so far and the batch size.
type ProgressFunc func(done, total int)

// BatchSnap snaps every input in order, one at a time, waiting the
// configured request delay after each trail before starting the next.
//
// The result has an entry for every input id; a trail that could not be
// snapped, for whatever reason, maps to nil. The only error returned is the
// context's, in which case the partial results gathered so far are returned
// alongside it. An unknown mode fails the whole batch before any request.
func (s *Snapper) BatchSnap(ctx context.Context, inputs []models.SnapInput, mode models.TravelMode, onProgress ProgressFunc) (map[string]*models.SnappedRoute, error) {
	if _, err := Profile(mode); err != nil {
		return nil, err
	}

	results := make(map[string]*models.SnappedRoute, len(inputs))
	total := len(inputs)
	failed := 0

	for i := range inputs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if i > 0 && s.delay > 0 {
			select {
			case <-ctx.Done():
				return results, ctx.Err()
			case <-time.After(s.delay):
			}
		}

		in := &inputs[i]
		route, err := s.SnapToRoads(ctx, in.Coordinates, mode)
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			failed++
			logging.Warn().Err(err).Str("trail_id", in.ID).Msg("[routing] snap failed, continuing batch")
			route = nil
		}
		results[in.ID] = route

		if onProgress != nil {
			onProgress(i+1, total)
		}
	}

	logging.Info().
		Int("trails", total).
		Int("failed", failed).
		Str("mode", string(mode)).
		Msg("[routing] batch snap complete")
	return results, nil
}
