// README: Prometheus metrics for the HTTP layer and the ride lifecycle.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RidesCreatedTotal   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ridehub", Name: "rides_created_total", Help: "Total rides created"})
	RidesAcceptedTotal  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ridehub", Name: "rides_accepted_total", Help: "Total rides accepted by drivers"})
	RidesCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ridehub", Name: "rides_completed_total", Help: "Total rides completed"})

	TransitionConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ridehub",
		Name:      "transition_conflicts_total",
		Help:      "Status transitions rejected because another writer won the race",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ridehub", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ridehub",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
