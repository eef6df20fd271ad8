package analytics

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/example/storefront-core/internal/domain"
	"github.com/example/storefront-core/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusSink(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewPrometheusSink(reg)
	ctx := context.Background()

	s.Emit(ctx, domain.Event{Name: domain.EventAddToCart, Currency: domain.Currency, Items: []domain.EventItem{{ItemID: "1", Price: 1500, Quantity: 2}}})
	s.Emit(ctx, domain.Event{Name: domain.EventAddToCart, Currency: domain.Currency, Items: []domain.EventItem{{ItemID: "2", Price: 250, Quantity: 1}}})
	s.Emit(ctx, domain.Event{Name: domain.EventCatalogLoaded, Attrs: map[string]string{"phase": "lite"}})

	assert.Equal(t, 2.0, promtest.ToFloat64(s.events.WithLabelValues(domain.EventAddToCart)))
	assert.Equal(t, 1.0, promtest.ToFloat64(s.events.WithLabelValues(domain.EventCatalogLoaded)))
	assert.Equal(t, 3.0, promtest.ToFloat64(s.units.WithLabelValues(domain.EventAddToCart)))
	assert.Equal(t, 3250.0, promtest.ToFloat64(s.value.WithLabelValues(domain.EventAddToCart, domain.Currency)))
	assert.Equal(t, 3, promtest.CollectAndCount(s.events)+promtest.CollectAndCount(s.units))
}

func TestMultiAndLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	rec := &testutil.RecordingSink{}

	Multi{rec, LogSink{Logger: logger}}.Emit(context.Background(), domain.Event{Name: domain.EventCatalogLoaded, Attrs: map[string]string{"phase": "full"}})

	assert.Len(t, rec.Named(domain.EventCatalogLoaded), 1)
	assert.Contains(t, buf.String(), "event=catalog_loaded")
	assert.Contains(t, buf.String(), "phase=full")
}
