// Package catalog reconciles the lite and full product feeds and orders
// products for the homepage rails.
package catalog

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/example/storefront-core/internal/domain"
)

// Merge overlays full onto current by product id. Products only in current
// keep their position; new ids are appended in the order full lists them.
// Running it again with the same full payload changes nothing.
func Merge(current, full []domain.Product) []domain.Product {
	index := make(map[string]int, len(current)+len(full))
	out := make([]domain.Product, 0, len(current)+len(full))
	put := func(p domain.Product) {
		if i, ok := index[p.ID]; ok {
			out[i] = p
			return
		}
		index[p.ID] = len(out)
		out = append(out, p)
	}
	for _, p := range current {
		put(p)
	}
	for _, p := range full {
		put(p)
	}
	return out
}

// LiteResult is the outcome of the lite phase.
type LiteResult struct {
	Products []domain.Product
	Settings *domain.Settings
	// FullLoaded is true when the fallback ran and no full fetch should follow.
	FullLoaded bool
	Fallback   bool
	Err        error
}

// Reconciler runs the two catalog load phases against the network port.
// It holds no product state; the caller applies results.
type Reconciler struct {
	API    domain.StorefrontAPI
	Sink   domain.EventSink
	Logger *slog.Logger
}

func (r Reconciler) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r Reconciler) emit(ctx context.Context, phase string, n int) {
	if r.Sink == nil {
		return
	}
	r.Sink.Emit(ctx, domain.Event{
		Name:  domain.EventCatalogLoaded,
		Attrs: map[string]string{"phase": phase, "count": strconv.Itoa(n)},
	})
}

// LoadLite fetches the homepage payload. On failure it returns the sample
// catalog marked as fully loaded, so the list is never empty.
func (r Reconciler) LoadLite(ctx context.Context) LiteResult {
	home, err := r.API.FetchHomeData(ctx)
	if err != nil {
		r.logger().Error("lite catalog fetch failed, using sample catalog", "err", err)
		products := SampleCatalog()
		r.emit(ctx, "fallback", len(products))
		return LiteResult{Products: products, FullLoaded: true, Fallback: true, Err: err}
	}
	products := home.Products
	if len(products) == 0 {
		r.logger().Warn("lite catalog is empty, using sample catalog")
		products = SampleCatalog()
	}
	r.emit(ctx, "lite", len(products))
	return LiteResult{Products: products, Settings: home.Settings}
}

// FetchFull fetches the complete catalog. An empty payload is replaced by
// the sample catalog. The caller merges the result with Merge.
func (r Reconciler) FetchFull(ctx context.Context) ([]domain.Product, error) {
	full, err := r.API.FetchAllProducts(ctx)
	if err != nil {
		return nil, err
	}
	if len(full) == 0 {
		r.logger().Warn("full catalog is empty, using sample catalog")
		full = SampleCatalog()
	}
	r.emit(ctx, "full", len(full))
	return full, nil
}
