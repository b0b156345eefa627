// Package metrics exposes admission counters on a private Prometheus registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vncsmyrnk/enquesta/internal/core/domain"
	"github.com/vncsmyrnk/enquesta/internal/core/ports"
)

const (
	namespace = "enquesta"
	subsystem = "admission"
)

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

type AdmissionMetrics struct {
	accepted   *prometheus.CounterVec
	rejected   *prometheus.CounterVec
	conflicts  prometheus.Counter
	evaluation prometheus.Histogram
}

var _ ports.AdmissionMetrics = (*AdmissionMetrics)(nil)

func NewAdmissionMetrics(reg prometheus.Registerer) *AdmissionMetrics {
	factory := promauto.With(reg)
	return &AdmissionMetrics{
		accepted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "votes_accepted_total",
				Help:      "Votes counted, by poll access mode",
			},
			[]string{"access_mode"},
		),
		rejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "votes_rejected_total",
				Help:      "Votes refused, by rejection reason",
			},
			[]string{"reason"},
		),
		conflicts: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "write_conflicts_total",
				Help:      "Poll writes refused because another write landed first",
			},
		),
		evaluation: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "evaluation_seconds",
				Help:      "Time spent deciding a single vote attempt",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8), // 10µs to ~160ms
			},
		),
	}
}

func (m *AdmissionMetrics) VoteAccepted(mode domain.AccessMode) {
	m.accepted.WithLabelValues(string(mode)).Inc()
}

func (m *AdmissionMetrics) VoteRejected(reason domain.Reason) {
	m.rejected.WithLabelValues(string(reason)).Inc()
}

func (m *AdmissionMetrics) WriteConflict() {
	m.conflicts.Inc()
}

func (m *AdmissionMetrics) ObserveEvaluation(seconds float64) {
	m.evaluation.Observe(seconds)
}
