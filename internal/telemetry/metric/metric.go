// Package metric exposes AdminGate's Prometheus metrics: connection
// volume, handshake outcomes, dispatched admin commands, and registry
// size.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handshake result label values.
const (
	ResultAuthorized  = "authorized"
	ResultUnknownTok  = "unknown_token"
	ResultUserMism    = "username_mismatch"
	ResultMalformed   = "malformed"
	ResultTimeout     = "timeout"
	ResultRateLimited = "rate_limited"
)

// Registry holds all application metrics backed by a dedicated
// Prometheus registry.
type Registry struct {
	prom *prometheus.Registry

	// Connection metrics.
	ConnectionsTotal  prometheus.Counter
	ActiveConnections prometheus.Gauge

	// Handshake outcomes, labeled by result.
	Handshakes *prometheus.CounterVec

	// Admin commands, labeled by operation name.
	AdminCommands *prometheus.CounterVec

	// Frames silently dropped by dispatch (unknown opcode or short body).
	DroppedFrames prometheus.Counter

	// Live administrator records.
	Administrators prometheus.Gauge
}

// NewRegistry builds and registers all metrics under the admingate
// namespace, including the standard Go runtime and process collectors.
func NewRegistry() *Registry {
	prom := prometheus.NewRegistry()

	r := &Registry{
		prom: prom,
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "admingate",
			Name:      "connections_total",
			Help:      "Connections accepted since start.",
		}),
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "admingate",
			Name:      "active_connections",
			Help:      "Currently open connections.",
		}),
		Handshakes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "admingate",
			Name:      "handshakes_total",
			Help:      "Handshake attempts by result.",
		}, []string{"result"}),
		AdminCommands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "admingate",
			Name:      "admin_commands_total",
			Help:      "Dispatched administrative commands by operation.",
		}, []string{"op"}),
		DroppedFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "admingate",
			Name:      "dropped_frames_total",
			Help:      "Frames silently dropped by the decoder dispatch.",
		}),
		Administrators: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "admingate",
			Name:      "administrators",
			Help:      "Live administrator records in the registry.",
		}),
	}

	prom.MustRegister(
		r.ConnectionsTotal,
		r.ActiveConnections,
		r.Handshakes,
		r.AdminCommands,
		r.DroppedFrames,
		r.Administrators,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// Handler returns the /metrics HTTP handler for this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.prom, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.prom
}
