/*
Package httpserver hosts the site cloning API.

It wires the clone handler into a chi router together with request logging,
optional function key authentication, health and drain endpoints, pprof
diagnostics and a Prometheus metrics server.

# Endpoints

  - POST /api/clone - run the clone pipeline (function key required when configured)
  - GET /livez - liveness probe
  - GET /readyz - readiness probe, 503 while draining
  - GET /drain - mark the server not ready ahead of a shutdown
  - GET /undrain - mark the server ready again
  - /debug - pprof handlers, only when enabled

# Authentication

When function keys are configured, every API request must carry one, either
in the x-functions-key header or the code query parameter. Health and drain
endpoints stay open so probes and load balancers keep working.

# Timeouts

The server's write timeout should be left at zero for deployments where
clones run long: the response is held open until the pipeline finishes.
*/
package httpserver
