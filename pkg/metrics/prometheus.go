// Package metrics exposes Prometheus instrumentation for the attrition batch.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Label values used across the batch counters.
const (
	OutcomeSuccess  = "success"
	OutcomeFailed   = "failed"
	OutcomeCanceled = "canceled"
)

var defaultRunBuckets = []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600}

// Manager owns every collector on a private registry.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	batchRuns        *prometheus.CounterVec
	batchDuration    prometheus.Histogram
	employeesScored  *prometheus.CounterVec
	employeeFailures *prometheus.CounterVec
	aiFallbacks      *prometheus.CounterVec
	alerts           *prometheus.CounterVec
}

// NewManager builds a Manager. Without WithRegistry a fresh registry
// carrying the Go and process collectors is used.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "evalify",
		subsystem:        "attrition",
		histogramBuckets: defaultRunBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.batchRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_runs_total",
		Help:      "Completed batch runs by outcome",
	}, []string{"outcome"})

	m.batchDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_duration_seconds",
		Help:      "Wall time of a batch run",
		Buckets:   m.histogramBuckets,
	})

	m.employeesScored = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "employees_scored_total",
		Help:      "Employees scored and persisted, by scorer",
	}, []string{"scorer"})

	m.employeeFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "employee_failures_total",
		Help:      "Employees skipped by the batch, by failing stage",
	}, []string{"stage"})

	m.aiFallbacks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ai_fallbacks_total",
		Help:      "AI scorer calls that fell back to the rule-based scorer, by reason",
	}, []string{"reason"})

	m.alerts = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "alerts_total",
		Help:      "Retention alerts by audience and result",
	}, []string{"audience", "result"})
}

// RunFinished records one batch run.
func (m *Manager) RunFinished(outcome string, elapsed time.Duration) {
	m.batchRuns.WithLabelValues(outcome).Inc()
	m.batchDuration.Observe(elapsed.Seconds())
}

func (m *Manager) EmployeeScored(scorer string) {
	m.employeesScored.WithLabelValues(scorer).Inc()
}

func (m *Manager) EmployeeFailed(stage string) {
	m.employeeFailures.WithLabelValues(stage).Inc()
}

func (m *Manager) AIFallback(reason string) {
	m.aiFallbacks.WithLabelValues(reason).Inc()
}

// AlertResult records a dispatch attempt; result is sent, failed or suppressed.
func (m *Manager) AlertResult(audience, result string) {
	m.alerts.WithLabelValues(audience, result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
