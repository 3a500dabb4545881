// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

/*
Package websocket pushes live trail changes to connected map consumers.

It uses gorilla/websocket with a hub-and-spoke layout: one Hub goroutine
owns the client set and every Client runs a read pump and a write pump.

Message Types:

  - tracks_update: a merge touched the listed users' trails
    (source, user_ids, new_tracks, replaced_tracks, timestamp)
  - snap_progress: batch road snapping progress (status, done, total, mode)
  - ping / pong: application-level keepalive initiated by the client

Messages are encoded once per broadcast with goccy/go-json and queued on
every client. A client whose queue is full is disconnected rather than
slowing the hub down.

Lifecycle:

Hub.Serve implements suture.Service and runs under the supervisor's sync
layer. When its context ends every client receives a going-away close
frame; Register on a stopped hub fails and Unregister never blocks.

	hub := websocket.NewHub()
	tree.AddSyncService(hub)

	// in the HTTP handler, after upgrading:
	websocket.NewClient(hub, conn).Serve()
*/
package websocket
