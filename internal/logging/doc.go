// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

// Package logging provides centralized zerolog-based logging for Fieldtrail.
//
// The package exposes a global logger facade:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("user", id).Msg("[sync] trail updated")
//	logging.Error().Err(err).Msg("[tracking] fetch failed")
//
// Context-aware logging adds the request ID set by the HTTP middleware, the
// correlation ID attached to each poll tick or snap batch, and the field agent
// a request is about:
//
//	logging.Ctx(ctx).Info().Msg("[routing] batch finished")
//
// SlogHandler bridges slog-only libraries such as sutureslog into the same
// stream, and SyncLogger wraps the live poller's recurring events.
//
// Always terminate log chains with .Msg() or .Send(); an unterminated event is
// never written.
package logging
