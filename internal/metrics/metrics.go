// Package metrics exposes Prometheus counters for order activity.
package metrics

import (
	"errors"

	"github.com/manwah-pos/api/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	orderEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_events_total",
			Help: "Order store events by type",
		},
		[]string{"type"},
	)

	orderStatus = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_status_entered_total",
			Help: "Order events by the status the order is in after the event",
		},
		[]string{"status"},
	)

	rejectedMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_rejected_mutations_total",
			Help: "Order mutations rejected by the store, by reason",
		},
		[]string{"reason"},
	)
)

// Recorder counts store events. It is a store.Notifier.
type Recorder struct{}

// NewRecorder returns a Recorder bound to the default registry.
func NewRecorder() *Recorder { return &Recorder{} }

// Notify counts one event.
func (Recorder) Notify(e store.Event) {
	orderEvents.WithLabelValues(e.Type).Inc()
	orderStatus.WithLabelValues(string(e.Order.Status)).Inc()
}

// ObserveError counts a rejected mutation. Nil and unclassified errors are
// ignored.
func ObserveError(err error) {
	if reason := Reason(err); reason != "" {
		rejectedMutations.WithLabelValues(reason).Inc()
	}
}

// Reason maps a store error to its metric label.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, store.ErrNotFound):
		return "not_found"
	case errors.Is(err, store.ErrIllegalTransition):
		return "illegal_transition"
	case errors.Is(err, store.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, store.ErrConflict):
		return "conflict"
	case errors.Is(err, store.ErrUnavailable):
		return "unavailable"
	}
	return ""
}
