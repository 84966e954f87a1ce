/*
Package httpserver runs the HTTP API of the share engine.

The server mounts the routes of an API handler (usually a sharehandler.Handler)
behind request logging and adds lifecycle endpoints for load balancers. Metrics
are served on a separate listener.

# Endpoints

  - /api/shares/... - Routes registered by the handler
  - GET /livez - Liveness check
  - GET /readyz - Readiness check
  - GET /drain - Gracefully mark server as not ready
  - GET /undrain - Mark server as ready
  - /debug/pprof/ - Profiling, when enabled

# Example Usage

	metricsSrv, err := metrics.New(common.PackageName, cfg.MetricsAddr)
	eng, err := engine.New(engine.Config{Metrics: metricsSrv.Engine(), Log: logger})
	handler := sharehandler.NewHandler(eng, store, logger)

	server, err := httpserver.New(cfg, handler, metricsSrv)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	server.RunInBackground()
	defer server.Shutdown()
*/
package httpserver
