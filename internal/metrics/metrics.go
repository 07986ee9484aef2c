// Package metrics exposes Prometheus counters for the chat service.
// All recording methods are safe on a nil *Metrics so callers can run without metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cookwithai"

// Send outcomes
const (
	SendOK                = "ok"
	SendBusy              = "busy"
	SendConversationError = "conversation_error"
	SendResponseError     = "response_error"
)

// Meal plan outcomes
const (
	MealPlanned       = "planned"
	MealQueued        = "queued"
	MealNeedsDate     = "needs_date"
	MealNoRecipe      = "no_recipe"
	MealPlanFailed    = "failed"
	MealJobProcessed  = "job_processed"
	MealJobDeadLetter = "job_dead_letter"
)

// Metrics holds the service collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	sends          *prometheus.CounterVec
	persistFails   *prometheus.CounterVec
	aiRequests     *prometheus.CounterVec
	aiLatency      *prometheus.HistogramVec
	mealPlans      *prometheus.CounterVec
	activeSessions prometheus.Gauge
	httpRequests   *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
	dlqPurged      prometheus.Counter
}

// LatencyBuckets covers quick store calls through slow model replies (seconds)
var LatencyBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

// New creates the collectors and registers them with a fresh registry
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.sends = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "chat",
		Name:      "sends_total",
		Help:      "Chat sends by outcome",
	}, []string{"status"})

	m.persistFails = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "chat",
		Name:      "persistence_failures_total",
		Help:      "Conversation store writes that failed during a send",
	}, []string{"operation"})

	m.aiRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ai",
		Name:      "requests_total",
		Help:      "Model requests by provider and outcome",
	}, []string{"provider", "status"})

	m.aiLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "ai",
		Name:      "request_duration_seconds",
		Help:      "Model request latency in seconds",
		Buckets:   LatencyBuckets,
	}, []string{"provider"})

	m.mealPlans = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "meals",
		Name:      "plans_total",
		Help:      "Meal-plan extraction outcomes",
	}, []string{"result"})

	m.activeSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "chat",
		Name:      "active_sessions",
		Help:      "Chat sessions currently held in memory",
	})

	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status code",
	}, []string{"method", "route", "code"})

	m.httpLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   LatencyBuckets,
	}, []string{"method", "route"})

	m.dlqPurged = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "queue",
		Name:      "dlq_purged_total",
		Help:      "Dead-lettered jobs removed by the garbage collector",
	})

	m.registry.MustRegister(
		m.sends,
		m.persistFails,
		m.aiRequests,
		m.aiLatency,
		m.mealPlans,
		m.activeSessions,
		m.httpRequests,
		m.httpLatency,
		m.dlqPurged,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordSend counts one SendMessage outcome
func (m *Metrics) RecordSend(status string) {
	if m == nil {
		return
	}
	m.sends.WithLabelValues(status).Inc()
}

// RecordPersistenceFailure counts a failed store write during a send
func (m *Metrics) RecordPersistenceFailure(operation string) {
	if m == nil {
		return
	}
	m.persistFails.WithLabelValues(operation).Inc()
}

// ObserveAI records one model call
func (m *Metrics) ObserveAI(provider string, err error, d time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.aiRequests.WithLabelValues(provider, status).Inc()
	m.aiLatency.WithLabelValues(provider).Observe(d.Seconds())
}

// RecordMealPlan counts a meal-plan extraction or job outcome
func (m *Metrics) RecordMealPlan(result string) {
	if m == nil {
		return
	}
	m.mealPlans.WithLabelValues(result).Inc()
}

// SetActiveSessions reports the session store size
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

// ObserveHTTP records a served request. route should be the mux path template.
func (m *Metrics) ObserveHTTP(method, route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordDLQPurged counts jobs removed from the dead letter queue
func (m *Metrics) RecordDLQPurged(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.dlqPurged.Add(float64(n))
}
