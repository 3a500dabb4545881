// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

/*
Package supervisor runs fieldtrail's long-lived services under suture v4.

# Tree

	fieldtrail
	├── sync-layer
	│   ├── trail-session   (initial load + live poller)
	│   ├── websocket-hub
	│   └── cache:api       (expired view sweep)
	└── api-layer
	    └── http-server

Each layer restarts its own children with suture's backoff; a crashing
poller never takes the HTTP server down with it. Supervisor events are
logged through sutureslog, which main feeds with the zerolog-backed
slog.Logger from the logging package.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
	    ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddSyncService(session)
	tree.AddSyncService(hub)
	tree.AddSyncService(handler.Cache())
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = tree.Serve(ctx)

The services subpackage holds adapters for things that do not already
implement suture.Service, such as *http.Server.
*/
package supervisor
