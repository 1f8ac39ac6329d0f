// Package metrics provides the Prometheus collectors for the relay
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cardrelay"

// Metrics holds all collectors; every method is nil-receiver safe
type Metrics struct {
	reg *prometheus.Registry

	ProbeOutcomes     *prometheus.CounterVec
	ProbeDuration     *prometheus.HistogramVec
	ResolveResults    *prometheus.CounterVec
	ResolveDuration   prometheus.Histogram
	ResolveCandidates prometheus.Histogram
	HistoryOutcomes   *prometheus.CounterVec

	QueueDepth     prometheus.Gauge
	QueueBusy      prometheus.Gauge
	TasksTotal     *prometheus.CounterVec
	DeliveryErrors *prometheus.CounterVec
	Updates        *prometheus.CounterVec

	HTTPRequests *prometheus.HistogramVec
}

// New builds collectors on reg; nil reg creates a private registry (tests, CLI)
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		ProbeOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probe_outcomes_total",
			Help:      "Candidate probes by outcome",
		}, []string{"outcome"}),
		ProbeDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_duration_seconds",
			Help:      "Latency of a single candidate probe",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		}, []string{"outcome"}),
		ResolveResults: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolve_results_total",
			Help:      "Identifier resolutions by result",
		}, []string{"result"}),
		ResolveDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolve_duration_seconds",
			Help:      "Wall time of one identifier resolution including enrichment and history",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		ResolveCandidates: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolve_candidates_probed",
			Help:      "Candidates probed before a resolution finished",
			Buckets:   prometheus.LinearBuckets(3, 6, 10),
		}),
		HistoryOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_history_total",
			Help:      "Price history extractions by outcome",
		}, []string{"outcome"}),
		QueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_pending",
			Help:      "Tasks waiting behind the in-progress one",
		}),
		QueueBusy: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_busy",
			Help:      "1 while the worker processes a task",
		}),
		TasksTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_total",
			Help:      "Finished tasks by final state",
		}, []string{"state"}),
		DeliveryErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_errors_total",
			Help:      "Failed chat platform calls by operation",
		}, []string{"op"}),
		Updates: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Inbound chat updates by disposition",
		}, []string{"disposition"}),
		HTTPRequests: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Ops API latency by route and status",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// WithRuntime adds the Go runtime and process collectors, used by the long-running bot
func (m *Metrics) WithRuntime() *Metrics {
	m.reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return m
}

// Registry exposes the underlying registry (tests gather from it)
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// ObserveProbe counts one probe outcome and its latency
func (m *Metrics) ObserveProbe(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.ProbeOutcomes.WithLabelValues(outcome).Inc()
	m.ProbeDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveResolve records one finished resolution
func (m *Metrics) ObserveResolve(result string, probed int, d time.Duration) {
	if m == nil {
		return
	}
	m.ResolveResults.WithLabelValues(result).Inc()
	m.ResolveCandidates.Observe(float64(probed))
	m.ResolveDuration.Observe(d.Seconds())
}

// ObserveHistory counts one price history outcome
func (m *Metrics) ObserveHistory(outcome string) {
	if m == nil {
		return
	}
	m.HistoryOutcomes.WithLabelValues(outcome).Inc()
}

// SetQueue publishes the queue gauges
func (m *Metrics) SetQueue(pending int, busy bool) {
	if m == nil {
		return
	}
	m.QueueDepth.Set(float64(pending))
	if busy {
		m.QueueBusy.Set(1)
	} else {
		m.QueueBusy.Set(0)
	}
}

// TaskFinished counts a task reaching a final state
func (m *Metrics) TaskFinished(state string) {
	if m == nil {
		return
	}
	m.TasksTotal.WithLabelValues(state).Inc()
}

// DeliveryFailed counts a failed chat platform call
func (m *Metrics) DeliveryFailed(op string) {
	if m == nil {
		return
	}
	m.DeliveryErrors.WithLabelValues(op).Inc()
}

// UpdateReceived counts one inbound chat update
func (m *Metrics) UpdateReceived(disposition string) {
	if m == nil {
		return
	}
	m.Updates.WithLabelValues(disposition).Inc()
}

// ObserveHTTP records one ops API request
func (m *Metrics) ObserveHTTP(route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, statusClass(status)).Observe(d.Seconds())
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
