package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/example/storefront-core/internal/domain"
	"golang.org/x/sync/errgroup"
)

func (s *Store) adminToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return "", fmt.Errorf("%w: no admin session", domain.ErrUnauthorized)
	}
	return s.token, nil
}

// fail logs err and shows the error's user message, or msg when it has none.
func (s *Store) fail(err error, msg string) error {
	return s.failNotice(err, domain.UserMessage(err, msg))
}

// failNotice logs err and shows notice as is. An authorization failure
// flags the session for re-login and leaves admin data untouched.
func (s *Store) failNotice(err error, notice string) error {
	s.log.Error(notice, "err", err)
	s.update(func() bool {
		if errors.Is(err, domain.ErrUnauthorized) {
			s.loginRequired = true
			notice = "Your session has expired. Please log in again."
		}
		s.notes.Notify(notice, domain.SeverityError)
		return false
	})
	return err
}

// RefreshAdminData loads orders, contact messages and dashboard stats
// together. Nothing changes unless all three succeed.
func (s *Store) RefreshAdminData(ctx context.Context) error {
	token, err := s.adminToken()
	if err != nil {
		return nil
	}
	var (
		orders   []domain.Order
		messages []domain.ContactMessage
		stats    domain.DashboardStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		orders, err = s.api.FetchOrders(gctx, token)
		return err
	})
	g.Go(func() (err error) {
		messages, err = s.api.FetchMessages(gctx, token)
		return err
	})
	g.Go(func() (err error) {
		stats, err = s.api.FetchDashboardStats(gctx, token)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return s.fail(err, "Could not load admin data.")
		}
		return fmt.Errorf("load admin data: %w", err)
	}
	s.update(func() bool {
		s.orders = orders
		s.messages = messages
		s.stats = &stats
		s.tracker.Recount(s.orders)
		return false
	})
	return nil
}

// RefreshOrders reloads the order list and recounts new orders. Without a
// session it does nothing.
func (s *Store) RefreshOrders(ctx context.Context) error {
	token, err := s.adminToken()
	if err != nil {
		return nil
	}
	orders, err := s.api.FetchOrders(ctx, token)
	if err != nil {
		return s.fail(err, "Could not refresh orders.")
	}
	s.update(func() bool {
		s.orders = orders
		s.tracker.Recount(s.orders)
		s.notes.Notify("Orders list refreshed.", domain.SeveritySuccess)
		return false
	})
	return nil
}

// MarkOrdersAsSeen moves the watermark to now and zeroes the new-order count.
func (s *Store) MarkOrdersAsSeen(ctx context.Context) {
	now := s.now()
	s.update(func() bool {
		s.tracker.MarkSeen(now)
		return false
	})
	if s.persist != nil {
		if err := s.persist.SaveWatermark(ctx, now); err != nil {
			s.log.Error("save watermark failed", "err", err)
		}
	}
}

// ReceiveOrder merges a pushed order into the admin order list. It reports
// false and changes nothing when no admin session is active.
func (s *Store) ReceiveOrder(o domain.Order) bool {
	applied := false
	s.update(func() bool {
		if s.token == "" {
			return false
		}
		applied = true
		i := slices.IndexFunc(s.orders, func(cur domain.Order) bool { return cur.ID == o.ID })
		if i >= 0 {
			s.orders[i] = o
		} else {
			s.orders = append([]domain.Order{o}, s.orders...)
		}
		s.tracker.Recount(s.orders)
		return false
	})
	return applied
}

// AddOrder places an order with a frozen copy of lines. Errors go back to
// the caller; the checkout view decides how to present them.
func (s *Store) AddOrder(ctx context.Context, customer domain.Customer, lines []domain.CartLine, total float64, payment domain.PaymentInfo, shippingCharge float64) (domain.Order, error) {
	req := domain.OrderRequest{
		Customer:       customer,
		Lines:          slices.Clone(lines),
		Total:          total,
		Payment:        payment,
		ShippingCharge: shippingCharge,
	}
	order, err := s.api.CreateOrder(ctx, req)
	if err != nil {
		return domain.Order{}, fmt.Errorf("place order: %w", err)
	}
	s.update(func() bool {
		if s.token != "" {
			s.orders = append([]domain.Order{order}, s.orders...)
			s.tracker.Recount(s.orders)
		}
		return false
	})
	return order, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	token, err := s.adminToken()
	if err != nil {
		return s.fail(err, "Could not update order status.")
	}
	s.mu.Lock()
	i := slices.IndexFunc(s.orders, func(o domain.Order) bool { return o.ID == orderID })
	var current domain.OrderStatus
	if i >= 0 {
		current = s.orders[i].Status
	}
	s.mu.Unlock()
	if i >= 0 && !current.CanTransitionTo(status) {
		return s.fail(domain.NewValidationError(fmt.Sprintf("Order %s cannot move from %s to %s.", orderID, current, status)), "Could not update order status.")
	}

	updated, err := s.api.UpdateOrderStatus(ctx, orderID, status, token)
	if err != nil {
		return s.fail(err, "Could not update order status.")
	}
	s.update(func() bool {
		for i := range s.orders {
			if s.orders[i].ID == updated.ID {
				s.orders[i] = updated
			}
		}
		s.notes.Notify(fmt.Sprintf("Order %s status updated to %s.", orderID, status), domain.SeveritySuccess)
		return false
	})
	return nil
}

func (s *Store) DeleteOrder(ctx context.Context, orderID string) error {
	token, err := s.adminToken()
	if err != nil {
		return s.fail(err, "Could not delete order.")
	}
	if err := s.api.DeleteOrder(ctx, orderID, token); err != nil {
		return s.fail(err, "Could not delete order.")
	}
	s.update(func() bool {
		s.orders = slices.DeleteFunc(slices.Clone(s.orders), func(o domain.Order) bool { return o.ID == orderID })
		s.tracker.Recount(s.orders)
		s.notes.Notify(fmt.Sprintf("Order %s has been deleted.", orderID), domain.SeveritySuccess)
		return false
	})
	return nil
}
