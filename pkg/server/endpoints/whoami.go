package endpoints

import (
	"net/http"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/identity"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/server"
)

// WhoamiResponse represents the response from the /whoami endpoint
type WhoamiResponse struct {
	UserID     *int   `json:"user_id"`
	System     bool   `json:"system"`
	RemoteAddr string `json:"remote_addr"`
	TokenIAT   int64  `json:"token_iat,omitempty"`
}

// RegisterWhoamiEndpoint registers the /whoami endpoint
func RegisterWhoamiEndpoint(s *server.Server) {
	// Create a subrouter for /whoami that uses bearer auth
	whoamiRouter := s.Router.PathPrefix("/whoami").Subrouter()
	whoamiRouter.Use(s.IdentityMiddleware.Middleware)

	whoamiRouter.HandleFunc("", handleWhoami()).Methods("GET")
}

func handleWhoami() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := WhoamiResponse{
			System:     true,
			RemoteAddr: identity.RemoteAddr(r.Context()),
		}
		if id, ok := identity.Get(r.Context()); ok {
			userID := id.UserID
			response.UserID = &userID
			response.System = false
			if !id.IssuedAt.IsZero() {
				response.TokenIAT = id.IssuedAt.Unix()
			}
		}
		respondWithJSON(w, http.StatusOK, response)
	}
}
