// Package metric provides Prometheus metrics for the leaderboard service.
//
// Metrics are registered on a private registry so tests can build and
// scrape as many instances as they like without ever colliding with
// the process-global default.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Command outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeConflict = "conflict"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Registry holds all application metrics.
type Registry struct {
	// CommandsTotal counts inbound commands by name and outcome.
	CommandsTotal *prometheus.CounterVec

	// PullsTotal counts snapshot pulls from the channel by outcome.
	PullsTotal *prometheus.CounterVec

	// PushesTotal counts snapshot pushes to the channel by outcome.
	PushesTotal *prometheus.CounterVec

	// RegistrySize tracks the number of records in the registry table.
	RegistrySize prometheus.Gauge

	// SnapshotBytes tracks the size of the last encoded snapshot blob.
	SnapshotBytes prometheus.Gauge

	reg *prometheus.Registry
}

// NewRegistry creates a new metrics registry with all collectors
// registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leaderboard",
			Name:      "commands_total",
			Help:      "Inbound commands processed, by command name and outcome.",
		}, []string{"command", "outcome"}),

		PullsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leaderboard",
			Subsystem: "sync",
			Name:      "pulls_total",
			Help:      "Snapshot pulls from the external channel, by outcome.",
		}, []string{"outcome"}),

		PushesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leaderboard",
			Subsystem: "sync",
			Name:      "pushes_total",
			Help:      "Snapshot pushes to the external channel, by outcome.",
		}, []string{"outcome"}),

		RegistrySize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "leaderboard",
			Name:      "registry_records",
			Help:      "Current number of records in the registry table.",
		}),

		SnapshotBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "leaderboard",
			Subsystem: "sync",
			Name:      "snapshot_bytes",
			Help:      "Size in bytes of the most recently encoded snapshot blob.",
		}),

		reg: reg,
	}

	reg.MustRegister(
		r.CommandsTotal,
		r.PullsTotal,
		r.PushesTotal,
		r.RegistrySize,
		r.SnapshotBytes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// Handler returns an HTTP handler serving the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// OutcomeFromError maps an operation error to an outcome label.
func OutcomeFromError(err error) string {
	if err == nil {
		return OutcomeOK
	}
	return OutcomeError
}
