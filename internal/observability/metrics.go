package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	requestsTotal        *prometheus.CounterVec
	latencySeconds       *prometheus.HistogramVec
	errorsTotal          *prometheus.CounterVec
	scoreUpdatesTotal    *prometheus.CounterVec
	gradeRecalculations  prometheus.Counter
	gradeEventsPublished *prometheus.CounterVec
	dashboardCacheTotal  *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the gradebook.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradebook_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gradebook_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradebook_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		scoreUpdatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradebook_score_updates_total",
			Help: "Score edits applied to courses, by kind.",
		}, []string{"kind"})

		gradeRecalculations = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gradebook_grade_recalculations_total",
			Help: "Number of course grade computations performed for responses.",
		})

		gradeEventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradebook_grade_events_total",
			Help: "Grade update events by publish outcome.",
		}, []string{"outcome"})

		dashboardCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradebook_dashboard_cache_total",
			Help: "Dashboard cache lookups by result.",
		}, []string{"result"})

		prometheus.MustRegister(
			requestsTotal,
			latencySeconds,
			errorsTotal,
			scoreUpdatesTotal,
			gradeRecalculations,
			gradeEventsPublished,
			dashboardCacheTotal,
		)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Errors exposes the counter for error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// ScoreUpdates counts applied score edits ("set" or "clear").
func ScoreUpdates() *prometheus.CounterVec {
	RegisterMetrics()
	return scoreUpdatesTotal
}

// GradeRecalculations counts course grade computations.
func GradeRecalculations() prometheus.Counter {
	RegisterMetrics()
	return gradeRecalculations
}

// GradeEventsPublished counts grade events by outcome.
func GradeEventsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return gradeEventsPublished
}

// DashboardCache counts dashboard cache hits and misses.
func DashboardCache() *prometheus.CounterVec {
	RegisterMetrics()
	return dashboardCacheTotal
}
