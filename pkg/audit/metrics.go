package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the router's Prometheus collectors
type Metrics struct {
	// EntriesAppended counts entries accepted by the sink, by tag
	EntriesAppended *prometheus.CounterVec

	// EventsSkipped counts events left unaudited by policy
	EventsSkipped *prometheus.CounterVec

	// EventsFailed counts events that produced an error, by kind and reason
	// (consistency, lookup, payload, invalid, sink)
	EventsFailed *prometheus.CounterVec

	DispatchDuration *prometheus.HistogramVec

	// InFlight is the number of events being dispatched right now
	InFlight prometheus.Gauge
}

// NewMetrics registers the collectors on reg. A nil reg registers on a
// private registry nobody scrapes.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		EntriesAppended: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "backoffice_audit_entries_appended_total",
			Help: "Total number of audit entries appended to the sink.",
		}, []string{"tag"}),

		EventsSkipped: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "backoffice_audit_events_skipped_total",
			Help: "Total number of events deliberately left unaudited.",
		}, []string{"kind"}),

		EventsFailed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "backoffice_audit_events_failed_total",
			Help: "Total number of events that could not be audited.",
		}, []string{"kind", "reason"}),

		DispatchDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "backoffice_audit_dispatch_duration_seconds",
			Help:    "Histogram of event dispatch latencies, lookups and sink included.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"kind"}),

		InFlight: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "backoffice_audit_dispatch_in_flight",
			Help: "Current number of events being dispatched.",
		}),
	}
}
