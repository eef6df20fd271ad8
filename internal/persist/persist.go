// Package persist saves the durable slice of store state and validates it
// field by field when it is read back.
package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/example/storefront-core/internal/domain"
)

// Storage keys.
const (
	SliceKey     = "storefront-storage"
	WatermarkKey = "storefront-admin-last-orders-seen"
)

// Slice is the persisted subset of state. Loading flags, selection,
// notifications and the admin token are never written.
type Slice struct {
	Cart     []domain.CartLine `json:"cart"`
	Settings domain.Settings   `json:"settings"`
	Products []domain.Product  `json:"products"`
}

// Restored is a validated slice ready to apply.
type Restored struct {
	Slice
	// CartTotal is recomputed from the surviving cart lines.
	CartTotal float64
	// Discarded is set when the blob was unusable and defaults were kept.
	Discarded bool
	// DroppedLines counts cart entries that failed validation.
	DroppedLines int
}

// Rehydrate merges a stored blob over defaults. Stored values replace the
// default for their top-level key wholesale, with no field-level merge; the
// cart is always replaced by its validated entries.
// It never fails: unusable data falls back to defaults.
func Rehydrate(raw []byte, defaults Slice) Restored {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil || top == nil {
		return Restored{Slice: defaults, CartTotal: domain.CartTotal(defaults.Cart), Discarded: true}
	}

	out := Restored{Slice: defaults}
	out.Cart, out.DroppedLines = filterCart(top["cart"])
	out.CartTotal = domain.CartTotal(out.Cart)

	if rawSettings, ok := top["settings"]; ok && !isNull(rawSettings) {
		var settings domain.Settings
		if err := json.Unmarshal(rawSettings, &settings); err == nil {
			out.Settings = settings
		}
	}
	if rawProducts, ok := top["products"]; ok {
		if products, ok := decodeProducts(rawProducts); ok {
			out.Products = products
		}
	}
	return out
}

func filterCart(raw json.RawMessage) ([]domain.CartLine, int) {
	var entries []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &entries) != nil {
		return []domain.CartLine{}, 0
	}
	lines := make([]domain.CartLine, 0, len(entries))
	dropped := 0
	for _, e := range entries {
		line, ok := cartLine(e)
		if !ok {
			dropped++
			continue
		}
		lines = append(lines, line)
	}
	return lines, dropped
}

// cartLine accepts an object with a string id, a numeric price and a
// positive whole quantity. Display fields are taken when they are strings.
// This is stricter than the stored-blob rule, which takes any numeric quantity.
func cartLine(raw json.RawMessage) (domain.CartLine, bool) {
	var fields map[string]json.RawMessage
	if json.Unmarshal(raw, &fields) != nil || fields == nil {
		return domain.CartLine{}, false
	}
	id, ok := str(fields["id"])
	if !ok {
		return domain.CartLine{}, false
	}
	price, ok := number(fields["price"])
	if !ok {
		return domain.CartLine{}, false
	}
	qty, ok := number(fields["quantity"])
	if !ok || qty < 1 || qty != math.Trunc(qty) || qty > math.MaxInt32 {
		return domain.CartLine{}, false
	}
	name, _ := str(fields["name"])
	image, _ := str(fields["image"])
	size, _ := str(fields["size"])
	return domain.CartLine{
		ProductID: id,
		Name:      name,
		Price:     price,
		Quantity:  int(qty),
		Image:     image,
		Size:      size,
	}, true
}

func decodeProducts(raw json.RawMessage) ([]domain.Product, bool) {
	var entries []json.RawMessage
	if json.Unmarshal(raw, &entries) != nil || entries == nil {
		return nil, false
	}
	products := make([]domain.Product, 0, len(entries))
	for _, e := range entries {
		var p domain.Product
		if json.Unmarshal(e, &p) != nil || p.ID == "" {
			continue
		}
		products = append(products, p)
	}
	return products, true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func str(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return "", false
	}
	return s, true
}

func number(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || (raw[0] != '-' && (raw[0] < '0' || raw[0] > '9')) {
		return 0, false
	}
	var f float64
	if json.Unmarshal(raw, &f) != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Adapter reads and writes state through a domain.Storage.
type Adapter struct {
	Storage domain.Storage
	Logger  *slog.Logger
}

func (a Adapter) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

func (a Adapter) Save(ctx context.Context, s Slice) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := a.Storage.Put(ctx, SliceKey, raw); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// Load returns the stored slice merged over defaults. Only storage failures
// are returned; malformed data is logged and replaced by defaults.
func (a Adapter) Load(ctx context.Context, defaults Slice) (Restored, error) {
	raw, ok, err := a.Storage.Get(ctx, SliceKey)
	if err != nil {
		return Restored{Slice: defaults, CartTotal: domain.CartTotal(defaults.Cart)}, fmt.Errorf("load state: %w", err)
	}
	if !ok {
		return Restored{Slice: defaults, CartTotal: domain.CartTotal(defaults.Cart)}, nil
	}
	r := Rehydrate(raw, defaults)
	if r.Discarded {
		a.logger().Warn("discarding persisted state", "err", domain.ErrDataIntegrity, "bytes", len(raw))
	}
	if r.DroppedLines > 0 {
		a.logger().Warn("dropped invalid cart entries", "count", r.DroppedLines)
	}
	return r, nil
}

func (a Adapter) SaveWatermark(ctx context.Context, t time.Time) error {
	if err := a.Storage.Put(ctx, WatermarkKey, []byte(t.UTC().Format(time.RFC3339Nano))); err != nil {
		return fmt.Errorf("save watermark: %w", err)
	}
	return nil
}

// LoadWatermark returns the zero time when nothing usable is stored.
func (a Adapter) LoadWatermark(ctx context.Context) (time.Time, error) {
	raw, ok, err := a.Storage.Get(ctx, WatermarkKey)
	if err != nil {
		return time.Time{}, fmt.Errorf("load watermark: %w", err)
	}
	if !ok {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, string(bytes.TrimSpace(raw)))
	if err != nil {
		a.logger().Warn("ignoring stored watermark", "err", err)
		return time.Time{}, nil
	}
	return t, nil
}
