package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry holds every collector the service exposes on /metrics.
	Registry = prometheus.NewRegistry()

	// HTTPRequestsTotal counts handled requests by route, method and status code.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farmflow_http_requests_total",
			Help: "Total number of HTTP requests handled.",
		},
		[]string{"route", "method", "code"},
	)

	// HTTPRequestDuration observes request latency by route.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "farmflow_http_request_duration_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// MaintenanceRecordedTotal counts successful maintenance records.
	MaintenanceRecordedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "farmflow_maintenance_recorded_total",
			Help: "Total number of maintenance events recorded.",
		},
	)

	// PreChecksSavedTotal counts stored pre-check records.
	PreChecksSavedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "farmflow_prechecks_saved_total",
			Help: "Total number of pre-check records saved.",
		},
	)

	// SeededItemsTotal counts maintenance items inserted by the seed routine.
	SeededItemsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "farmflow_seeded_items_total",
			Help: "Total number of maintenance items inserted by seeding.",
		},
	)

	// EventsPublishedTotal counts domain events by type and result (ok/failed).
	EventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farmflow_events_published_total",
			Help: "Total number of domain events published.",
		},
		[]string{"type", "result"},
	)
)

func init() {
	Registry.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		MaintenanceRecordedTotal,
		PreChecksSavedTotal,
		SeededItemsTotal,
		EventsPublishedTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}
