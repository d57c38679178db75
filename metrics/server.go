package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

// MetricsServer exposes the collected metrics in Prometheus text format.
type MetricsServer struct {
	http.Server
}

// New creates a metrics server for the named service. The service name is
// published through the service_up gauge so scrapes can tell deployments
// apart.
func New(name, addr string) (*MetricsServer, error) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`service_up{service=%q}`, name)).Set(1)

	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	return &MetricsServer{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: time.Second,
		},
	}, nil
}
