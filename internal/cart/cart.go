// Package cart keeps the shopping cart as lines keyed by product and size.
package cart

import (
	"context"
	"fmt"

	"github.com/example/storefront-core/internal/domain"
)

// ProductLookup resolves catalog details for analytics events.
type ProductLookup func(id string) (domain.Product, bool)

// Cart is not safe for concurrent use; the store serializes access.
type Cart struct {
	lines  map[domain.CartKey]domain.CartLine
	order  []domain.CartKey
	sink   domain.EventSink
	lookup ProductLookup
}

func New(sink domain.EventSink, lookup ProductLookup) *Cart {
	if sink == nil {
		sink = domain.DiscardSink{}
	}
	return &Cart{
		lines:  make(map[domain.CartKey]domain.CartLine),
		sink:   sink,
		lookup: lookup,
	}
}

// AddItem adds quantity of product in the given size. It reports whether an
// existing line was increased rather than a new line appended.
func (c *Cart) AddItem(ctx context.Context, p domain.Product, quantity int, size string) (bool, error) {
	if size == "" {
		return false, domain.NewValidationError("Please select a size.")
	}
	if quantity <= 0 {
		return false, domain.NewValidationError(fmt.Sprintf("Quantity must be at least 1, got %d.", quantity))
	}
	key := domain.CartKey{ProductID: p.ID, Size: size}
	line, existed := c.lines[key]
	if existed {
		line.Quantity += quantity
	} else {
		line = domain.CartLine{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  quantity,
			Image:     p.Thumbnail(),
			Size:      size,
		}
		c.order = append(c.order, key)
	}
	c.lines[key] = line

	c.sink.Emit(ctx, domain.Event{
		Name:     domain.EventAddToCart,
		Currency: domain.Currency,
		Items: []domain.EventItem{{
			ItemID:       p.ID,
			ItemName:     p.Name,
			ItemCategory: p.Category,
			Price:        p.Price,
			Quantity:     quantity,
			ItemVariant:  size,
		}},
	})
	return existed, nil
}

// SetQuantity overwrites a line's quantity; n <= 0 removes the line. A missing
// line is left alone and reports false.
func (c *Cart) SetQuantity(ctx context.Context, productID, size string, n int) bool {
	key := domain.CartKey{ProductID: productID, Size: size}
	line, ok := c.lines[key]
	if !ok {
		return false
	}
	delta := n - line.Quantity
	if n <= 0 {
		delta = -line.Quantity
		c.remove(key)
	} else {
		updated := line
		updated.Quantity = n
		c.lines[key] = updated
	}

	switch {
	case delta > 0:
		c.sink.Emit(ctx, c.event(domain.EventAddToCart, line, delta))
	case delta < 0:
		c.sink.Emit(ctx, c.event(domain.EventRemoveFromCart, line, -delta))
	}
	return true
}

func (c *Cart) event(name string, line domain.CartLine, qty int) domain.Event {
	item := domain.EventItem{
		ItemID:      line.ProductID,
		ItemName:    line.Name,
		Price:       line.Price,
		Quantity:    qty,
		ItemVariant: line.Size,
	}
	if c.lookup != nil {
		if p, ok := c.lookup(line.ProductID); ok {
			item.ItemName = p.Name
			item.ItemCategory = p.Category
			item.Price = p.Price
		}
	}
	return domain.Event{Name: name, Currency: domain.Currency, Items: []domain.EventItem{item}}
}

func (c *Cart) remove(key domain.CartKey) {
	delete(c.lines, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

func (c *Cart) Clear() {
	c.lines = make(map[domain.CartKey]domain.CartLine)
	c.order = nil
}

// Deduct takes the quantities of lines out of the cart without emitting
// events. A line that reaches zero is removed; quantity added after the
// lines were captured stays. It reports whether anything changed.
func (c *Cart) Deduct(lines []domain.CartLine) bool {
	changed := false
	for _, l := range lines {
		key := l.Key()
		cur, ok := c.lines[key]
		if !ok {
			continue
		}
		changed = true
		if cur.Quantity <= l.Quantity {
			c.remove(key)
			continue
		}
		cur.Quantity -= l.Quantity
		c.lines[key] = cur
	}
	return changed
}

// Restore replaces the cart with lines, e.g. after rehydration. Lines sharing
// a key collapse into the first one with quantities summed; lines with a
// quantity below 1 are dropped.
func (c *Cart) Restore(lines []domain.CartLine) {
	c.Clear()
	for _, l := range lines {
		if l.Quantity < 1 {
			continue
		}
		key := l.Key()
		if cur, ok := c.lines[key]; ok {
			cur.Quantity += l.Quantity
			c.lines[key] = cur
			continue
		}
		c.lines[key] = l
		c.order = append(c.order, key)
	}
}

// Lines returns the lines in insertion order.
func (c *Cart) Lines() []domain.CartLine {
	out := make([]domain.CartLine, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.lines[k])
	}
	return out
}

func (c *Cart) Line(productID, size string) (domain.CartLine, bool) {
	l, ok := c.lines[domain.CartKey{ProductID: productID, Size: size}]
	return l, ok
}

func (c *Cart) Len() int { return len(c.order) }

// Total is always derived from the current lines.
func (c *Cart) Total() float64 { return domain.CartTotal(c.Lines()) }
