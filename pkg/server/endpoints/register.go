package endpoints

import (
	"github.com/doodlesbykumbi/backoffice-audit/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterStatusEndpoints(srv)
	RegisterEventsEndpoints(srv)
	RegisterEntriesEndpoints(srv)
	RegisterWhoamiEndpoint(srv)
}
