// Package app provides application initialization and lifecycle
// management for the analytics web service. It wires configuration,
// logging, observability, the analytics service and the HTTP server
// together at startup and handles graceful shutdown.
//
// # Initialization Flow
//
//	1. Load configuration from environment and the optional config file
//	2. Initialize logging and OpenTelemetry
//	3. Build the source loader, parser and summarizer
//	4. Derive the initial analytics snapshot
//	5. Set up the chi router, middleware chain and handlers
//	6. Start the HTTP server and the periodic refresh loop
//
// # Graceful Shutdown
//
// SIGINT and SIGTERM drain active requests, stop the refresh loop and
// flush the telemetry providers. Initialization errors are returned to
// the caller; the package never calls os.Exit directly.
package app
