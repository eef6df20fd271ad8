// Package analytics holds domain.EventSink implementations.
package analytics

import (
	"context"
	"log/slog"

	"github.com/example/storefront-core/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink counts events and the units they carry, labelled by event
// name.
type PrometheusSink struct {
	events *prometheus.CounterVec
	units  *prometheus.CounterVec
	value  *prometheus.CounterVec
}

func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	s := &PrometheusSink{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "events_total",
			Help:      "Analytics events emitted by the store.",
		}, []string{"event"}),
		units: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "event_items_total",
			Help:      "Item units carried by analytics events.",
		}, []string{"event"}),
		value: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "event_value_total",
			Help:      "Price times quantity carried by analytics events.",
		}, []string{"event", "currency"}),
	}
	reg.MustRegister(s.events, s.units, s.value)
	return s
}

func (s *PrometheusSink) Emit(_ context.Context, e domain.Event) {
	s.events.WithLabelValues(e.Name).Inc()
	var units, value float64
	for _, it := range e.Items {
		if it.Quantity <= 0 {
			continue
		}
		units += float64(it.Quantity)
		value += it.Price * float64(it.Quantity)
	}
	if units > 0 {
		s.units.WithLabelValues(e.Name).Add(units)
		s.value.WithLabelValues(e.Name, e.Currency).Add(value)
	}
}

// LogSink writes each event at debug level.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Emit(ctx context.Context, e domain.Event) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{"event", e.Name, "items", len(e.Items)}
	for k, v := range e.Attrs {
		attrs = append(attrs, k, v)
	}
	logger.DebugContext(ctx, "analytics event", attrs...)
}

// Multi fans an event out to every sink in order.
type Multi []domain.EventSink

func (m Multi) Emit(ctx context.Context, e domain.Event) {
	for _, s := range m {
		s.Emit(ctx, e)
	}
}

var (
	_ domain.EventSink = (*PrometheusSink)(nil)
	_ domain.EventSink = LogSink{}
	_ domain.EventSink = Multi{}
)
