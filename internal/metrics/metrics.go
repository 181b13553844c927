// Package metrics exposes prometheus counters for the lifecycle engines.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BoxStatusTransitions counts box lifecycle transitions by target status.
	BoxStatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "box_status_transitions_total",
		Help: "Box lifecycle transitions by resulting status.",
	}, []string{"status"})

	// PaymentsRecorded counts persisted payment events.
	PaymentsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payments_recorded_total",
		Help: "Payment events recorded against boxes.",
	})

	// PaymentsOverpaid counts payments that left a box overpaid.
	PaymentsOverpaid = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payments_overpaid_total",
		Help: "Payment recomputations that resolved to OVERPAID.",
	})

	// WhtTransitions counts WHT certificate transitions by target status.
	WhtTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wht_transitions_total",
		Help: "WHT certificate tracking transitions by resulting status.",
	}, []string{"status"})
)
