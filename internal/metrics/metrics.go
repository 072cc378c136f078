// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"pattern", "method", "status"},
	)

	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Teacher login attempts by result",
		},
		[]string{"result"},
	)

	EvaluationsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "evaluations_created_total",
			Help: "Total number of evaluations created",
		},
	)

	EvaluationsDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "evaluations_deleted_total",
			Help: "Total number of evaluations deleted",
		},
	)

	PinLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pin_lookups_total",
			Help: "Student code lookups by result",
		},
		[]string{"result"},
	)
)

const (
	LoginSuccess  = "success"
	LoginFailure  = "failure"
	LoginLimited  = "limited"
	LookupFound   = "found"
	LookupMissing = "not_found"
)
