// Package metrics exposes Prometheus instruments for reservation traffic.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// ReservationMetrics counts reservation operations by outcome. A nil
// *ReservationMetrics is valid and records nothing.
type ReservationMetrics struct {
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

func NewReservationMetrics(reg prometheus.Registerer) *ReservationMetrics {
	m := &ReservationMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "reservations",
			Name:      "operations_total",
			Help:      "Reservation operations by outcome",
		}, []string{"operation", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "salon",
			Subsystem: "reservations",
			Name:      "operation_duration_seconds",
			Help:      "Latency of reservation operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.operations, m.latency)
	return m
}

// Outcome buckets an HTTP status into a low-cardinality label.
func Outcome(status int) string {
	switch {
	case status < http.StatusBadRequest:
		return "ok"
	case status == http.StatusConflict:
		return "conflict"
	case status == http.StatusNotFound:
		return "not_found"
	case status < http.StatusInternalServerError:
		return "invalid"
	default:
		return "error"
	}
}

func (m *ReservationMetrics) Observe(operation string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, Outcome(status)).Inc()
	m.latency.WithLabelValues(operation).Observe(seconds)
}
