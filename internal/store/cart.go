package store

import (
	"context"
	"fmt"

	"github.com/example/storefront-core/internal/domain"
)

// AddToCart adds quantity of p in size. Validation problems such as a
// missing size are shown as a notification and leave the cart untouched.
func (s *Store) AddToCart(ctx context.Context, p domain.Product, quantity int, size string) {
	s.update(func() bool {
		updated, err := s.cart.AddItem(ctx, p, quantity, size)
		if err != nil {
			s.notes.Notify(domain.UserMessage(err, "Could not add to cart."), domain.SeverityError)
			return false
		}
		if updated {
			s.notes.Notify(fmt.Sprintf("Quantity updated for %s (Size: %s)!", p.Name, size), domain.SeveritySuccess)
		} else {
			s.notes.Notify(fmt.Sprintf("%s (Size: %s) added to cart!", p.Name, size), domain.SeveritySuccess)
		}
		return true
	})
}

// UpdateCartQuantity sets a line's quantity; zero or less removes it.
func (s *Store) UpdateCartQuantity(ctx context.Context, productID, size string, quantity int) {
	s.update(func() bool {
		return s.cart.SetQuantity(ctx, productID, size, quantity)
	})
}

// RemoveOrderedLines deducts lines that were submitted with an order. Lines
// added or increased since the submission keep the difference.
func (s *Store) RemoveOrderedLines(lines []domain.CartLine) {
	s.update(func() bool {
		return s.cart.Deduct(lines)
	})
}

func (s *Store) ClearCart() {
	s.update(func() bool {
		s.cart.Clear()
		return true
	})
}
