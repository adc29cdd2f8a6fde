package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/darmiel/zenkey/internal/api/middleware"
	"github.com/darmiel/zenkey/internal/config"
)

// Server is a sandbox carrier: it answers discovery and asset links requests
// the way a carrier's discovery service would.
type Server struct {
	sandbox  *config.SandboxConfig
	registry *prometheus.Registry
	metrics  *middleware.Metrics
}

func NewServer(sandbox *config.SandboxConfig, registry *prometheus.Registry) (*Server, error) {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	metrics, err := middleware.NewMetrics(registry)
	if err != nil {
		return nil, err
	}
	return &Server{
		sandbox:  sandbox,
		registry: registry,
		metrics:  metrics,
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// public routes
	mux.HandleFunc("GET "+HealthCheckRoute, s.handleHealth)
	mux.HandleFunc("GET "+AboutRoute, s.handleAbout)
	mux.Handle("GET "+MetricsRoute, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	// carrier routes
	mux.Handle("GET "+DiscoveryRoute, s.metrics.Instrument("discovery", http.HandlerFunc(s.handleDiscovery)))
	mux.Handle("GET "+AssetLinksRoute, s.metrics.Instrument("assetlinks", http.HandlerFunc(s.handleAssetLinks)))

	return middleware.RecoverMiddleware(
		middleware.CorrelationIDMiddleware(
			middleware.LoggingMiddleware(
				mux)))
}
