package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service.
	Registry = prometheus.NewRegistry()

	// ProviderRequests counts travel-time provider calls by mode.
	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "traveltime_requests_total", Help: "Travel-time provider requests."},
		[]string{"mode"},
	)
	// ProviderRetries counts retried provider calls.
	ProviderRetries = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "traveltime_retries_total", Help: "Retried travel-time provider requests."},
	)
	// ProviderFailures counts pairs that resolved to the unreachable sentinel.
	ProviderFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "traveltime_failures_total", Help: "Travel-time pairs resolved to the unreachable sentinel."},
		[]string{"mode"},
	)
	// CacheHits and CacheMisses count travel-time cache lookups.
	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "traveltime_cache_hits_total", Help: "Travel-time cache hits."},
	)
	CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "traveltime_cache_misses_total", Help: "Travel-time cache misses."},
	)
	// SolverIterations and SolverImprovements track local-search progress.
	SolverIterations = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "solver_iterations_total", Help: "Local-search iterations across all solves."},
	)
	SolverImprovements = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "solver_improvements_total", Help: "Accepted best-solution improvements."},
	)
	// HTTPRequests counts API requests by method, path and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
)

var regOnce sync.Once

// RegisterDefault registers all collectors on the service registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(ProviderRequests)
		Registry.MustRegister(ProviderRetries)
		Registry.MustRegister(ProviderFailures)
		Registry.MustRegister(CacheHits)
		Registry.MustRegister(CacheMisses)
		Registry.MustRegister(SolverIterations)
		Registry.MustRegister(SolverImprovements)
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
