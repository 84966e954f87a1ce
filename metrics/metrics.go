// Package metrics exposes Prometheus metrics for the share engine service.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsServer serves a Prometheus registry on its own listener.
type MetricsServer struct {
	registry *prometheus.Registry
	engine   *EngineMetrics
	srv      *http.Server
}

// New creates a metrics server for namespace listening on addr.
// The registry carries Go runtime and process collectors plus the engine metrics.
func New(namespace, addr string) (*MetricsServer, error) {
	registry := prometheus.NewRegistry()
	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}
	if err := registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, err
	}

	engine, err := NewEngineMetrics(namespace, registry)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	return &MetricsServer{
		registry: registry,
		engine:   engine,
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Registry returns the registry the server exposes.
func (m *MetricsServer) Registry() *prometheus.Registry {
	return m.registry
}

// Engine returns the engine operation metrics registered with the server.
func (m *MetricsServer) Engine() *EngineMetrics {
	return m.engine
}

// Handler returns the HTTP handler serving /metrics.
func (m *MetricsServer) Handler() http.Handler {
	return m.srv.Handler
}

func (m *MetricsServer) ListenAndServe() error {
	return m.srv.ListenAndServe()
}

func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
