package endpoints

import (
	"net/http"
	"strconv"
	"time"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/audit"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/model"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/server"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/server/store"
)

const (
	defaultEntriesLimit = 100
	maxEntriesLimit     = 1000
)

// EntryResponse is an audit trail row as returned by GET /entries
type EntryResponse struct {
	ID                int64     `json:"id"`
	PerformingUserID  int       `json:"performing_user_id"`
	PerformingDetails string    `json:"performing_details"`
	PerformingIP      string    `json:"performing_ip"`
	EventDateUTC      time.Time `json:"event_date_utc"`
	AffectedUserID    int       `json:"affected_user_id"`
	AffectedDetails   *string   `json:"affected_details"`
	EventType         string    `json:"event_type"`
	EventDetails      string    `json:"event_details"`
}

// EntriesResponse is the body of GET /entries
type EntriesResponse struct {
	Entries []EntryResponse `json:"entries"`
	Total   int64           `json:"total"`
}

// RegisterEntriesEndpoints registers the audit trail listing. It is skipped
// when no entries store is configured.
func RegisterEntriesEndpoints(s *server.Server) {
	if s.EntriesStore == nil {
		return
	}

	entriesRouter := s.Router.PathPrefix("/entries").Subrouter()
	entriesRouter.Use(s.IdentityMiddleware.Middleware)

	// GET /entries?event_type=&user=&limit=&offset=
	entriesRouter.HandleFunc("", handleListEntries(s.EntriesStore)).Methods("GET")
}

func handleListEntries(entriesStore store.EntriesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseEntryFilter(r)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, ErrorBody{Code: "invalid_filter", Message: err.Error()})
			return
		}

		entries, err := entriesStore.ListEntries(r.Context(), filter)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, ErrorBody{Code: "internal_error", Message: "failed to list entries"})
			return
		}
		total, err := entriesStore.CountEntries(r.Context(), filter)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, ErrorBody{Code: "internal_error", Message: "failed to count entries"})
			return
		}

		response := EntriesResponse{Entries: make([]EntryResponse, 0, len(entries)), Total: total}
		for _, e := range entries {
			response.Entries = append(response.Entries, toEntryResponse(e))
		}
		respondWithJSON(w, http.StatusOK, response)
	}
}

func parseEntryFilter(r *http.Request) (store.EntryFilter, error) {
	q := r.URL.Query()
	filter := store.EntryFilter{Limit: defaultEntriesLimit}

	if v := q.Get("event_type"); v != "" {
		if !audit.Tag(v).Valid() {
			return filter, &filterError{param: "event_type", value: v}
		}
		filter.EventType = v
	}
	if v := q.Get("user"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return filter, &filterError{param: "user", value: v}
		}
		filter.PerformingUserID = &id
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 || limit > maxEntriesLimit {
			return filter, &filterError{param: "limit", value: v}
		}
		filter.Limit = limit
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return filter, &filterError{param: "offset", value: v}
		}
		filter.Offset = offset
	}
	return filter, nil
}

type filterError struct {
	param string
	value string
}

func (e *filterError) Error() string {
	return "invalid " + e.param + ": " + strconv.Quote(e.value)
}

func toEntryResponse(e model.AuditEntry) EntryResponse {
	return EntryResponse{
		ID:                e.ID,
		PerformingUserID:  e.PerformingUserID,
		PerformingDetails: e.PerformingDetails,
		PerformingIP:      e.PerformingIP,
		EventDateUTC:      e.EventDateUTC.UTC(),
		AffectedUserID:    e.AffectedUserID,
		AffectedDetails:   e.AffectedDetails,
		EventType:         e.EventType,
		EventDetails:      e.EventDetails,
	}
}
