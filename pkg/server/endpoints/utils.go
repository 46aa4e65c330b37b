package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/audit"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/events"
)

// ErrorBody is the error half of every JSON error response
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondWithError(w http.ResponseWriter, code int, payload interface{}) {
	respondWithJSON(w, code, map[string]interface{}{"error": payload})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// statusForError maps pipeline errors onto HTTP statuses
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, events.ErrUnknownKind):
		return http.StatusNotFound, "unknown_kind"
	case errors.Is(err, audit.ErrUnexpectedPayload):
		return http.StatusBadRequest, "unexpected_payload"
	case errors.Is(err, audit.ErrInvalidEntry):
		return http.StatusUnprocessableEntity, "invalid_entry"
	case errors.Is(err, audit.ErrConsistencyViolation):
		return http.StatusConflict, "consistency_violation"
	case errors.Is(err, audit.ErrSinkFailure):
		return http.StatusServiceUnavailable, "sink_failure"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
