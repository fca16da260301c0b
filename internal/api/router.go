package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fleet-route-service/internal/api/handlers"
	"fleet-route-service/internal/domain"
	"fleet-route-service/internal/platform/metrics"
	"fleet-route-service/internal/ports"
	"fleet-route-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(repo ports.StopRepository, allocator *services.Allocator, classes []domain.VehicleClass) http.Handler {
	mux := http.NewServeMux()

	stopHandler := &handlers.StopHandler{Repo: repo}
	allocHandler := &handlers.AllocationHandler{
		Repo:      repo,
		Allocator: allocator,
		Classes:   classes,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/stops", stopHandler.List)
	mux.HandleFunc("/allocations", allocHandler.Allocate)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return loggingMiddleware(mux)
}
