// Package httpserver serves the operational HTTP endpoints: liveness
// and Prometheus metrics. The gate protocol itself never rides HTTP.
package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/tehnewb/admingate/internal/infra/buildinfo"
	"github.com/tehnewb/admingate/internal/telemetry/metric"
)

// Server wraps the operational HTTP listener.
type Server struct {
	httpServer *http.Server
}

// New builds the server with /healthz and /metrics routes.
func New(addr string, metrics *metric.Registry) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealth)
	mux.Handle("/metrics", metrics.Handler())

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// ListenAndServe starts the server and blocks until Shutdown or error.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests up to the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}
