// Package metrics exposes the supervisor's prometheus collectors. They're registered
// on the default registry; serve them with promhttp.Handler().
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Anonymous is the supervisor label of supervisors started without a name
const Anonymous = "anonymous"

// result label values
const (
	ResultStarted  = "started"
	ResultIgnored  = "ignored"
	ResultDeclined = "declined"
	ResultFaulted  = "faulted"
)

var (
	ChildStarts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goactor_supervisor_child_starts_total",
			Help: "Child start requests by outcome",
		},
		[]string{"supervisor", "result"},
	)

	ChildRestarts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goactor_supervisor_child_restarts_total",
			Help: "Child restart attempts by outcome",
		},
		[]string{"supervisor", "result"},
	)

	IntensityExhausted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goactor_supervisor_intensity_exhausted_total",
			Help: "Times a supervisor gave up after exceeding its restart intensity",
		},
		[]string{"supervisor"},
	)

	ChildrenActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "goactor_supervisor_children_active",
			Help: "Children with a live process, summed over the supervisors sharing a label",
		},
		[]string{"supervisor"},
	)
)

// RecordStart counts the outcome of a StartChild request.
func RecordStart(supervisor, result string) {
	ChildStarts.WithLabelValues(supervisor, result).Inc()
}

// RecordRestart counts the outcome of a restart attempt.
func RecordRestart(supervisor, result string) {
	ChildRestarts.WithLabelValues(supervisor, result).Inc()
}

func RecordIntensityExhausted(supervisor string) {
	IntensityExhausted.WithLabelValues(supervisor).Inc()
}

// AddChildrenActive moves the gauge by delta. Supervisors sharing a label add up.
func AddChildrenActive(supervisor string, delta int) {
	if delta == 0 {
		return
	}
	ChildrenActive.WithLabelValues(supervisor).Add(float64(delta))
}
