// Package metrics provides Prometheus metrics for the conversation pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the assistant.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	TurnsTotal      *prometheus.CounterVec
	BackendDuration *prometheus.HistogramVec
	CommandsTotal   *prometheus.CounterVec
	ParseFallbacks  prometheus.Counter
	PendingCommands prometheus.Gauge
	GateDecisions   *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		TurnsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskvoice_turns_total",
				Help: "Total conversation turns by input kind and outcome.",
			},
			[]string{"input", "status"},
		),
		BackendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "taskvoice_backend_duration_seconds",
				Help:    "Model backend round-trip duration by backend.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend"},
		),
		CommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskvoice_commands_total",
				Help: "Executed commands by action and result.",
			},
			[]string{"action", "result"},
		),
		ParseFallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "taskvoice_parse_fallbacks_total",
				Help: "Model replies that could not be decoded as structured JSON.",
			},
		),
		PendingCommands: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "taskvoice_pending_commands",
				Help: "Commands currently awaiting confirmation (0 or 1).",
			},
		),
		GateDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskvoice_gate_decisions_total",
				Help: "Confirmation gate outcomes by decision.",
			},
			[]string{"decision"},
		),
		registry: reg,
	}

	reg.MustRegister(m.TurnsTotal)
	reg.MustRegister(m.BackendDuration)
	reg.MustRegister(m.CommandsTotal)
	reg.MustRegister(m.ParseFallbacks)
	reg.MustRegister(m.PendingCommands)
	reg.MustRegister(m.GateDecisions)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordTurn increments the turn counter.
func (m *Metrics) RecordTurn(input, status string) {
	if m == nil {
		return
	}
	m.TurnsTotal.WithLabelValues(input, status).Inc()
}

// ObserveBackend records one backend call.
func (m *Metrics) ObserveBackend(backend string, seconds float64) {
	if m == nil {
		return
	}
	m.BackendDuration.WithLabelValues(backend).Observe(seconds)
}

// RecordCommand increments the executed command counter.
func (m *Metrics) RecordCommand(action, result string) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(action, result).Inc()
}

func (m *Metrics) RecordParseFallback() {
	if m == nil {
		return
	}
	m.ParseFallbacks.Inc()
}

// RecordGate counts offer/confirm/cancel/discard decisions.
func (m *Metrics) RecordGate(decision string) {
	if m == nil {
		return
	}
	m.GateDecisions.WithLabelValues(decision).Inc()
}

func (m *Metrics) SetPending(held bool) {
	if m == nil {
		return
	}
	if held {
		m.PendingCommands.Set(1)
		return
	}
	m.PendingCommands.Set(0)
}
