package endpoints

import (
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/events"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/identity"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/server"
)

// maxEventBytes bounds a single event body
const maxEventBytes = 1 << 20

// RegisterEventsEndpoints registers the event ingestion endpoint
func RegisterEventsEndpoints(s *server.Server) {
	eventsRouter := s.Router.PathPrefix("/events").Subrouter()
	eventsRouter.Use(s.IdentityMiddleware.Middleware)

	// POST /events/{kind} - Raise an event
	eventsRouter.HandleFunc("/{kind}", handleRaiseEvent(s.Events, s.Logger)).Methods("POST")
}

func handleRaiseEvent(raiser events.Raiser, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["kind"]
		kind, err := events.KindString(name)
		if err != nil {
			respondWithError(w, http.StatusNotFound, ErrorBody{
				Code:    "unknown_kind",
				Message: "unknown event kind " + name,
			})
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxEventBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				respondWithError(w, http.StatusRequestEntityTooLarge, ErrorBody{
					Code:    "payload_too_large",
					Message: "event body exceeds limit",
				})
				return
			}
			respondWithError(w, http.StatusBadRequest, ErrorBody{Code: "invalid_payload", Message: err.Error()})
			return
		}

		payload, err := events.DecodeJSON(kind, body)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, ErrorBody{Code: "invalid_payload", Message: err.Error()})
			return
		}

		if err := raiser.Raise(r.Context(), kind, payload); err != nil {
			status, code := statusForError(err)
			fields := []zap.Field{
				zap.Stringer("kind", kind),
				zap.String("remote_addr", identity.RemoteAddr(r.Context())),
				zap.Error(err),
			}
			if status >= http.StatusInternalServerError {
				logger.Error("event rejected", fields...)
			} else {
				logger.Warn("event rejected", fields...)
			}
			respondWithError(w, status, ErrorBody{Code: code, Message: err.Error()})
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
