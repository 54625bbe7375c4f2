package metrics

import "github.com/prometheus/client_golang/prometheus"

// TrackingMetrics counts per-wish outcomes of the price tracker.
type TrackingMetrics struct {
	checks *prometheus.CounterVec
}

// NewTrackingMetrics registers the tracking counters on the provided registerer.
func NewTrackingMetrics(reg prometheus.Registerer) *TrackingMetrics {
	if reg == nil {
		return &TrackingMetrics{}
	}
	checks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tracking_checks_total",
		Help: "Wish price checks by resulting status.",
	}, []string{"status"})
	reg.MustRegister(checks)
	return &TrackingMetrics{checks: checks}
}

// IncStatus counts one wish check with the given status.
func (m *TrackingMetrics) IncStatus(status string) {
	if m == nil || m.checks == nil {
		return
	}
	m.checks.WithLabelValues(normalizeLabel(status)).Inc()
}
