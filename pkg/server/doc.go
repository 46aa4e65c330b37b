// Package server provides the HTTP ingestion server for back-office events.
//
// The server receives events raised by the back-office application over
// HTTP and hands them to an event bus, where the audit router turns them
// into audit entries. It uses gorilla/mux for routing and wraps the router
// in an access log.
//
// # Server Setup
//
//	srv := server.NewServer(server.Options{
//	    Config: cfg,
//	    Events: bus,
//	    Audit:  router,
//	})
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Endpoints
//
// Endpoints are registered via the endpoints subpackage:
//
//   - POST /events/{kind} - raise an event (bearer token required)
//   - GET /entries - read back the audit trail (bearer token required)
//   - GET /whoami - show the principal and address a request resolves to
//   - GET / - pipeline status
//   - GET /healthz - database connectivity
//   - GET /metrics - Prometheus metrics
package server
