// Package freshness counts orders created after a "last seen" watermark.
package freshness

import (
	"time"

	"github.com/example/storefront-core/internal/domain"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006, 3:04:05 PM",
	"1/2/2006",
}

// OrderTime returns the order's creation time, falling back to its display
// date. The second result is false when neither is usable.
func OrderTime(o domain.Order) (time.Time, bool) {
	if o.CreatedAt != nil && !o.CreatedAt.IsZero() {
		return *o.CreatedAt, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, o.Date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Tracker keeps one watermark instead of a read flag per order. The zero
// watermark counts every dated order as new. Not safe for concurrent use.
type Tracker struct {
	watermark time.Time
	count     int
}

func New(watermark time.Time) *Tracker {
	return &Tracker{watermark: watermark}
}

func (t *Tracker) Watermark() time.Time { return t.watermark }

func (t *Tracker) Count() int { return t.count }

// IsNew reports whether o was created strictly after the watermark.
func (t *Tracker) IsNew(o domain.Order) bool {
	ts, ok := OrderTime(o)
	return ok && ts.After(t.watermark)
}

// Recount sets the counter from the currently loaded orders.
func (t *Tracker) Recount(orders []domain.Order) int {
	n := 0
	for _, o := range orders {
		if t.IsNew(o) {
			n++
		}
	}
	t.count = n
	return n
}

// MarkSeen moves the watermark to now and zeroes the counter.
func (t *Tracker) MarkSeen(now time.Time) {
	t.watermark = now
	t.count = 0
}
