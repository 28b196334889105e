// Package app bootstraps the toolbench server.
//
// The application follows a two-phase initialization pattern:
//
//  1. Bootstrap phase: initialize logging, load and validate configuration,
//     build the services (execution engine, disclosure index, wrapper tree
//     watcher, HTTP server).
//  2. Execution phase: bind the listener, report readiness and block until
//     shutdown.
//
// Serve mode integrates with systemd Type=notify units via sd_notify and
// drains in-flight requests on SIGINT/SIGTERM before exiting.
package app
