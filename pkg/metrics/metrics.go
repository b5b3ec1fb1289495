package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds the solver and http metrics.
type Registry struct {
	registry *prometheus.Registry

	SolvesTotal            *prometheus.CounterVec
	SolveDuration          *prometheus.HistogramVec
	SeparationCallsTotal   prometheus.Counter
	LazyConstraintsTotal   prometheus.Counter
	SearchNodesTotal       *prometheus.CounterVec
	InstanceEdges          prometheus.Histogram
	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
	SolutionCacheHitsTotal prometheus.Counter
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initSolverMetrics()
	r.initHTTPMetrics()
	return r
}

func (r *Registry) initSolverMetrics() {
	r.SolvesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "multicut_solves_total",
			Help: "Total number of multicut solves",
		},
		[]string{"engine", "status"},
	)

	r.SolveDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "multicut_solve_duration_seconds",
			Help:    "Multicut solve duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0},
		},
		[]string{"engine"},
	)

	r.SeparationCallsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "multicut_separation_calls_total",
			Help: "Total number of cycle inequality separation calls",
		},
	)

	r.LazyConstraintsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "multicut_lazy_constraints_total",
			Help: "Total number of violated cycle inequalities submitted as lazy constraints",
		},
	)

	r.SearchNodesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "multicut_search_nodes_total",
			Help: "Total number of search nodes (or row generation rounds) explored by the engine",
		},
		[]string{"engine"},
	)

	r.InstanceEdges = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "multicut_instance_edges",
			Help:    "Number of edges per solved instance",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 1000},
		},
	)
}

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "multicut_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "multicut_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	r.SolutionCacheHitsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "multicut_solution_cache_hits_total",
			Help: "Total number of solve requests answered from the solution cache",
		},
	)
}

func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

func (r *Registry) RecordSolve(engine, status string, duration time.Duration, numEdges int, nodes, callbacks,
	lazyConstraints int64) {
	r.SolvesTotal.WithLabelValues(engine, status).Inc()
	r.SolveDuration.WithLabelValues(engine).Observe(duration.Seconds())
	r.InstanceEdges.Observe(float64(numEdges))
	r.SearchNodesTotal.WithLabelValues(engine).Add(float64(nodes))
	r.SeparationCallsTotal.Add(float64(callbacks))
	r.LazyConstraintsTotal.Add(float64(lazyConstraints))
}

func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
