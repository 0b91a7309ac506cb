// Package metrics provides a prometheus-backed implementation of the
// connection-lifecycle counters/gauges the server package reports
// through, modeled on pkg/metrics/nfs.go's per-subsystem pattern
// but collapsed into one concrete type rather than an interface with a
// separate backend package, since this runtime has exactly one metrics
// backend.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics collects connection-lifecycle and dispatch counters for one
// server instance.
type Metrics struct {
	connectionsAccepted    prometheus.Counter
	connectionsClosed      prometheus.Counter
	connectionsForceClosed prometheus.Counter
	activeConnections      prometheus.Gauge

	requestsDispatched *prometheus.CounterVec
}

// New registers a fresh set of collectors on reg and returns a Metrics
// that reports through them. Pass prometheus.NewRegistry() for test
// isolation, or prometheus.DefaultRegisterer wrapped in a registry for
// production use.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		connectionsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dittorpc",
			Subsystem: "server",
			Name:      "connections_accepted_total",
			Help:      "Total TCP connections accepted.",
		}),
		connectionsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dittorpc",
			Subsystem: "server",
			Name:      "connections_closed_total",
			Help:      "Total TCP connections closed normally.",
		}),
		connectionsForceClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dittorpc",
			Subsystem: "server",
			Name:      "connections_force_closed_total",
			Help:      "Total TCP connections force-closed on shutdown.",
		}),
		activeConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dittorpc",
			Subsystem: "server",
			Name:      "active_connections",
			Help:      "Current number of live TCP connections.",
		}),
		requestsDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dittorpc",
			Subsystem: "server",
			Name:      "requests_dispatched_total",
			Help:      "Total requests dispatched, labeled by outcome.",
		}, []string{"status"}),
	}

	reg.MustRegister(
		m.connectionsAccepted,
		m.connectionsClosed,
		m.connectionsForceClosed,
		m.activeConnections,
		m.requestsDispatched,
	)
	return m
}

// RecordConnectionAccepted implements server.MetricsRecorder.
func (m *Metrics) RecordConnectionAccepted() { m.connectionsAccepted.Inc() }

// RecordConnectionClosed implements server.MetricsRecorder.
func (m *Metrics) RecordConnectionClosed() { m.connectionsClosed.Inc() }

// RecordConnectionForceClosed implements server.MetricsRecorder.
func (m *Metrics) RecordConnectionForceClosed() { m.connectionsForceClosed.Inc() }

// SetActiveConnections implements server.MetricsRecorder.
func (m *Metrics) SetActiveConnections(count int32) { m.activeConnections.Set(float64(count)) }

// RecordDispatch records one dispatch outcome (e.g. "success",
// "garbage_args", "prog_mismatch", "bad_cred").
func (m *Metrics) RecordDispatch(status string) {
	m.requestsDispatched.WithLabelValues(status).Inc()
}
