package metrics

import (
	"errors"
	"time"

	apperrors "plate-rescue/pkg/app_errors"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics records the outcome and latency of reservation engine operations.
type EngineMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	events     *prometheus.CounterVec
}

// NewEngineMetrics registers the engine collectors on reg. A nil registerer
// yields a no-op recorder.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reservation_engine_operations_total",
		Help: "Reservation engine operations by outcome.",
	}, []string{"operation", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reservation_engine_operation_duration_seconds",
		Help:    "Duration of reservation engine transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reservation_events_total",
		Help: "Reservation events by type and processing result.",
	}, []string{"type", "result"})
	reg.MustRegister(operations, duration, events)
	return &EngineMetrics{
		operations: operations,
		duration:   duration,
		events:     events,
	}
}

// Observe records one finished operation.
func (m *EngineMetrics) Observe(operation string, err error, started time.Time) {
	if m == nil || m.operations == nil {
		return
	}
	m.operations.WithLabelValues(operation, Outcome(err)).Inc()
	m.duration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// IncEvent counts an event publish or consume result.
func (m *EngineMetrics) IncEvent(eventType, result string) {
	if m == nil || m.events == nil {
		return
	}
	m.events.WithLabelValues(eventType, result).Inc()
}

var outcomes = []struct {
	err   error
	label string
}{
	{apperrors.ErrInsufficientStock, "insufficient_stock"},
	{apperrors.ErrQuotaExceeded, "quota_exceeded"},
	{apperrors.ErrOutsideWindow, "outside_window"},
	{apperrors.ErrWrongState, "wrong_state"},
	{apperrors.ErrNotOwner, "not_owner"},
	{apperrors.ErrPlateNotFound, "not_found"},
	{apperrors.ErrReservationNotFound, "not_found"},
	{apperrors.ErrUserNotFound, "not_found"},
	{apperrors.ErrRoleNotAllowed, "forbidden"},
	{apperrors.ErrInvalidQuantity, "invalid"},
	{apperrors.ErrInvalidInput, "invalid"},
	{apperrors.ErrInvalidPickupCode, "invalid"},
}

// Outcome maps an engine error to a low-cardinality label.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	for _, o := range outcomes {
		if errors.Is(err, o.err) {
			return o.label
		}
	}
	return "error"
}
