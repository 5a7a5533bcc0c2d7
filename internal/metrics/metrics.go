// Package metrics exposes Prometheus collectors for the session workflows.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wardrobe"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeStale   = "stale"
)

var (
	workflowTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_completions_total",
			Help:      "Completed session workflows by workflow and outcome.",
		},
		[]string{"workflow", "outcome"},
	)

	workflowDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "workflow_duration_seconds",
			Help:      "Duration of outbound workflow calls.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"workflow"},
	)

	staleDiscarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_results_discarded_total",
			Help:      "Results dropped because a newer call or a reset superseded them.",
		},
		[]string{"workflow"},
	)

	inventoryItems = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "inventory_items",
		Help:      "Number of clothing items in the session inventory.",
	})

	ingestionInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ingestions_in_flight",
		Help:      "Video ingestion calls currently waiting on the backend.",
	})
)

var allMetrics = []prometheus.Collector{
	workflowTotal,
	workflowDuration,
	staleDiscarded,
	inventoryItems,
	ingestionInFlight,
}

// RecordWorkflow counts one completed workflow call and its duration.
func RecordWorkflow(workflow, outcome string, seconds float64) {
	workflowTotal.WithLabelValues(workflow, outcome).Inc()
	workflowDuration.WithLabelValues(workflow).Observe(seconds)
}

// RecordStale counts a discarded stale result.
func RecordStale(workflow string) {
	staleDiscarded.WithLabelValues(workflow).Inc()
}

// SetInventorySize reports the current inventory length.
func SetInventorySize(n int) {
	inventoryItems.Set(float64(n))
}

// IngestionStarted marks an upload as waiting on the backend.
func IngestionStarted() { ingestionInFlight.Inc() }

// IngestionFinished undoes IngestionStarted.
func IngestionFinished() { ingestionInFlight.Dec() }

// NewRegistry returns a registry with the session collectors and runtime metrics.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	for _, c := range allMetrics {
		reg.MustRegister(c)
	}
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
