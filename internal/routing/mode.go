// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package routing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/fieldtrail/internal/models"
)

// ErrUnknownMode is returned for a travel mode the routing service has no profile for.
var ErrUnknownMode = errors.New("unknown travel mode")

// profiles maps travel modes to OSRM profile names.
var profiles = map[models.TravelMode]string{
	models.TravelModeDriving: "car",
	models.TravelModeWalking: "foot",
	models.TravelModeCycling: "bike",
}

// ParseTravelMode parses a case-insensitive travel mode name.
func ParseTravelMode(s string) (models.TravelMode, error) {
	mode := models.TravelMode(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := profiles[mode]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
	return mode, nil
}

// Profile returns the OSRM profile for mode.
func Profile(mode models.TravelMode) (string, error) {
	p, ok := profiles[mode]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	return p, nil
}
