// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package tracking

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gobreaker "github.com/sony/gobreaker/v2"
)

// FetchError is returned when the tracking API answers with a non-2xx status.
type FetchError struct {
	StatusCode int
	Body       string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Body)
}

// IsUnauthorized reports whether the API rejected the credential.
func (e *FetchError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsServerError reports a 5xx status.
func (e *FetchError) IsServerError() bool {
	return e.StatusCode >= 500
}

// ErrCircuitOpen is returned when the circuit breaker rejects a call.
// It wraps gobreaker's own sentinels so errors.Is matches either.
var ErrCircuitOpen = errors.New("tracking API circuit open")

type circuitOpenError struct {
	cause error
}

func (e *circuitOpenError) Error() string {
	return fmt.Sprintf("%v: %v", ErrCircuitOpen, e.cause)
}

func (e *circuitOpenError) Is(target error) bool {
	return target == ErrCircuitOpen
}

func (e *circuitOpenError) Unwrap() error {
	return e.cause
}

// isBreakerRejection reports whether err came from the breaker itself.
func isBreakerRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// IsCanceled reports whether err is the result of context cancellation.
// A canceled fetch is expected when a poller tick is superseded or stopped.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// IsUnauthorized reports whether err is a 401 FetchError.
func IsUnauthorized(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.IsUnauthorized()
}
