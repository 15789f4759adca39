package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/poiesic/rensou/core"
	"github.com/poiesic/rensou/expansion"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the HTTP layer and the
// expansion engine. It implements expansion.Monitor so the same instance
// can be passed to the engine.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	expansions        *prometheus.CounterVec
	expansionDuration prometheus.Histogram
	nodesEmitted      *prometheus.CounterVec
	emptyBranches     *prometheus.CounterVec
	associations      prometheus.Counter
}

var _ expansion.Monitor = (*Metrics)(nil)

// NewMetrics creates collectors registered on a private registry.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		expansions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "expansions_total",
				Help:      "Total number of expansions by outcome",
			},
			[]string{"outcome"},
		),
		expansionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "expansion_duration_seconds",
				Help:      "Expansion duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		nodesEmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generation_nodes_total",
				Help:      "Total number of generation nodes emitted",
			},
			[]string{"generation"},
		),
		emptyBranches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "empty_branches_total",
				Help:      "Total number of parents that yielded no associations",
			},
			[]string{"generation"},
		),
		associations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "associations_total",
				Help:      "Total number of association results returned",
			},
		),
	}

	m.registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.expansions,
		m.expansionDuration,
		m.nodesEmitted,
		m.emptyBranches,
		m.associations,
	)
	return m
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) Start(string, int, float64) {}

func (m *Metrics) NodeEmitted(node core.GenerationNode) {
	m.nodesEmitted.WithLabelValues(generationLabel(node.GenerationNumber)).Inc()
}

func (m *Metrics) BranchEmpty(generation int, _ string) {
	m.emptyBranches.WithLabelValues(generationLabel(generation)).Inc()
}

func (m *Metrics) Finish(result *core.ExpansionResult, err error, elapsed time.Duration) {
	m.expansionDuration.Observe(elapsed.Seconds())
	m.expansions.WithLabelValues(outcome(err)).Inc()
	if err == nil && result != nil {
		m.associations.Add(float64(result.TotalCount))
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, core.ErrKeywordNotFound):
		return "not_found"
	case errors.Is(err, core.ErrOracleUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}

func generationLabel(generation int) string {
	return strconv.Itoa(generation)
}
