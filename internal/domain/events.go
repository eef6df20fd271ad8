package domain

import "context"

// Analytics event names.
const (
	EventAddToCart      = "add_to_cart"
	EventRemoveFromCart = "remove_from_cart"
	EventCatalogLoaded  = "catalog_loaded"
)

// Currency reported with commerce events.
const Currency = "BDT"

type EventItem struct {
	ItemID       string  `json:"item_id"`
	ItemName     string  `json:"item_name"`
	ItemCategory string  `json:"item_category,omitempty"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
	ItemVariant  string  `json:"item_variant,omitempty"`
}

// Event is an analytics record. Attrs carries non-commerce details.
type Event struct {
	Name     string            `json:"event"`
	Currency string            `json:"currency,omitempty"`
	Items    []EventItem       `json:"items,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
}

// EventSink receives analytics events. Emit must not block the caller for long.
type EventSink interface {
	Emit(ctx context.Context, e Event)
}

// DiscardSink drops every event.
type DiscardSink struct{}

func (DiscardSink) Emit(context.Context, Event) {}
