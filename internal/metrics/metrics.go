// Package metrics exposes Prometheus counters for ledger scans, settlements and
// status toggles. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry    *prometheus.Registry
	rowsSkipped *prometheus.CounterVec
	extractions *prometheus.CounterVec
	settlements *prometheus.CounterVec
	toggles     *prometheus.CounterVec
}

// New registers the chitfund collectors plus the Go and process collectors on a
// fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		rowsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chitfund_rows_skipped_total",
			Help: "Ledger rows skipped during extraction, by pass and reason.",
		}, []string{"pass", "reason"}),
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chitfund_extractions_total",
			Help: "Ledger extraction runs, by outcome.",
		}, []string{"outcome"}),
		settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chitfund_settlements_total",
			Help: "Auction settlement runs, by outcome.",
		}, []string{"outcome"}),
		toggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chitfund_status_toggles_total",
			Help: "Payment status toggles, by resulting status.",
		}, []string{"status"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.rowsSkipped, m.extractions, m.settlements, m.toggles,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) RowsSkipped(pass, reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rowsSkipped.WithLabelValues(pass, reason).Add(float64(n))
}

func (m *Metrics) Extraction(outcome string) {
	if m == nil {
		return
	}
	m.extractions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Settlement(outcome string) {
	if m == nil {
		return
	}
	m.settlements.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Toggle(paid bool) {
	if m == nil {
		return
	}
	status := "unpaid"
	if paid {
		status = "paid"
	}
	m.toggles.WithLabelValues(status).Inc()
}
