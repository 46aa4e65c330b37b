package endpoints

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/audit"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/server"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/server/store"
)

// StatusResponse represents the response from GET /
type StatusResponse struct {
	Status               string   `json:"status"`
	State                string   `json:"state"`
	Subscriptions        []string `json:"subscriptions"`
	Reserved             []string `json:"reserved"`
	InFlight             int64    `json:"in_flight"`
	TagVocabularyVersion int      `json:"tag_vocabulary_version"`
}

// HealthResponse represents the response from GET /healthz
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// RegisterStatusEndpoints registers the status, health and metrics endpoints
func RegisterStatusEndpoints(s *server.Server) {
	// GET / - Pipeline status (no auth required)
	s.Router.HandleFunc("/", handleStatus(s.Audit)).Methods("GET")

	// GET /healthz - Database connectivity (no auth required)
	s.Router.HandleFunc("/healthz", handleHealth(s.HealthStore)).Methods("GET")

	if s.Config.MetricsEnabled {
		// GET /metrics - Prometheus scrape endpoint
		s.Router.Handle("/metrics", handleMetrics(s.Gatherer)).Methods("GET")
	}
}

func handleStatus(router *audit.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := StatusResponse{
			Status:               "ok",
			State:                audit.StateUnregistered.String(),
			Subscriptions:        []string{},
			Reserved:             []string{},
			TagVocabularyVersion: audit.TagVocabularyVersion,
		}
		if router != nil {
			response.State = router.State().String()
			response.InFlight = router.InFlight()
			for _, k := range router.Subscriptions() {
				response.Subscriptions = append(response.Subscriptions, k.String())
			}
			for _, k := range router.Reserved() {
				response.Reserved = append(response.Reserved, k.String())
			}
		}
		respondWithJSON(w, http.StatusOK, response)
	}
}

func handleHealth(healthStore store.HealthStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if healthStore != nil {
			if err := healthStore.CheckConnectivity(r.Context()); err != nil {
				respondWithJSON(w, http.StatusServiceUnavailable, HealthResponse{
					Status: "error",
					Error:  "database connectivity check failed",
				})
				return
			}
		}
		respondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}

func handleMetrics(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
