// Package metrics exposes session activity as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/larsks/dronevision/internal/dashboard"
	"github.com/larsks/dronevision/internal/telemetry"
)

// Recorder owns a registry and the dronevision collectors. It implements
// the session observer hooks.
type Recorder struct {
	registry *prometheus.Registry

	// SessionsActive is the number of open viewer sessions
	SessionsActive prometheus.Gauge

	// SessionsOpened counts every session ever opened
	SessionsOpened prometheus.Counter

	// ActionsTotal counts triggered actions by kind (scan/report)
	ActionsTotal *prometheus.CounterVec

	// TelemetryEntriesTotal counts generated log entries by severity
	TelemetryEntriesTotal *prometheus.CounterVec
}

// NewRecorder creates a Recorder with its own registry. Process and Go
// runtime collectors are registered alongside the dronevision metrics.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		SessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "dronevision_sessions_active",
				Help: "Number of open dashboard sessions.",
			},
		),
		SessionsOpened: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "dronevision_sessions_opened_total",
				Help: "Total number of dashboard sessions opened.",
			},
		),
		ActionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dronevision_actions_total",
				Help: "Total number of simulated actions triggered.",
			},
			[]string{"kind"}, // kind: scan/report
		),
		TelemetryEntriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dronevision_telemetry_entries_total",
				Help: "Total number of generated telemetry entries.",
			},
			[]string{"severity"},
		),
	}

	r.registry.MustRegister(
		r.SessionsActive,
		r.SessionsOpened,
		r.ActionsTotal,
		r.TelemetryEntriesTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) SessionOpened(string) {
	r.SessionsOpened.Inc()
	r.SessionsActive.Inc()
}

func (r *Recorder) SessionClosed(string) {
	r.SessionsActive.Dec()
}

func (r *Recorder) ActionTriggered(_ string, kind dashboard.ActionKind) {
	r.ActionsTotal.WithLabelValues(string(kind)).Inc()
}

func (r *Recorder) TelemetryAppended(_ string, entry telemetry.Entry) {
	r.TelemetryEntriesTotal.WithLabelValues(string(entry.Severity)).Inc()
}
