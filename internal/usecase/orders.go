package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/storefront-core/internal/domain"
	"github.com/example/storefront-core/internal/store"
)

// OrderReceiver merges a pushed order into client state.
type OrderReceiver interface {
	ReceiveOrder(o domain.Order) bool
}

// IngestOrder decodes a pushed order message and hands it to the store.
// Malformed messages are returned as errors so the feed does not ack them.
type IngestOrder struct {
	Orders OrderReceiver
	Logger *slog.Logger
}

func (uc IngestOrder) Execute(_ context.Context, raw []byte) error {
	var o domain.Order
	if err := json.Unmarshal(raw, &o); err != nil {
		return fmt.Errorf("%w: order message: %v", domain.ErrValidation, err)
	}
	if o.ID == "" {
		return fmt.Errorf("%w: order message has no id", domain.ErrValidation)
	}
	if o.Status != "" && !o.Status.Valid() {
		return fmt.Errorf("%w: order %s has unknown status %q", domain.ErrValidation, o.ID, o.Status)
	}
	if !uc.Orders.ReceiveOrder(o) && uc.Logger != nil {
		// nothing to update without an admin session; the next refresh picks it up
		uc.Logger.Debug("pushed order skipped", "order", o.ID)
	}
	return nil
}

// Checkout is the part of the store PlaceOrder drives.
type Checkout interface {
	State() store.State
	AddOrder(ctx context.Context, customer domain.Customer, lines []domain.CartLine, total float64, payment domain.PaymentInfo, shippingCharge float64) (domain.Order, error)
	RemoveOrderedLines(lines []domain.CartLine)
}

// PlaceOrder submits the current cart and, once the backend accepts the
// order, removes exactly the submitted lines.
type PlaceOrder struct {
	Store Checkout
}

func (uc PlaceOrder) Execute(ctx context.Context, customer domain.Customer, payment domain.PaymentInfo, shippingCharge float64) (domain.Order, error) {
	if err := validateCustomer(customer); err != nil {
		return domain.Order{}, err
	}
	if payment.PaymentMethod != domain.PaymentCOD && payment.PaymentMethod != domain.PaymentOnline {
		return domain.Order{}, domain.NewValidationError("Please choose a payment method.")
	}
	if shippingCharge < 0 {
		return domain.Order{}, domain.NewValidationError("Shipping charge cannot be negative.")
	}
	st := uc.Store.State()
	if len(st.Cart) == 0 {
		return domain.Order{}, domain.NewValidationError("Your cart is empty.")
	}
	order, err := uc.Store.AddOrder(ctx, customer, st.Cart, st.CartTotal+shippingCharge, payment, shippingCharge)
	if err != nil {
		return domain.Order{}, err
	}
	uc.Store.RemoveOrderedLines(st.Cart)
	return order, nil
}

func validateCustomer(c domain.Customer) error {
	switch {
	case strings.TrimSpace(c.Name) == "":
		return domain.NewValidationError("Please enter your name.")
	case strings.TrimSpace(c.Phone) == "":
		return domain.NewValidationError("Please enter your phone number.")
	case strings.TrimSpace(c.Address) == "":
		return domain.NewValidationError("Please enter your address.")
	}
	return nil
}
