// Package testutil holds in-memory fakes shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/storefront-core/internal/domain"
)

// FakeAPI is an in-memory domain.StorefrontAPI. Configure it with Update
// once background work may be reading it.
type FakeAPI struct {
	mu sync.Mutex

	Home        domain.HomeData
	HomeErr     error
	All         []domain.Product
	AllErr      error
	Orders      []domain.Order
	OrdersErr   error
	Stats       domain.DashboardStats
	Messages    []domain.ContactMessage
	Settings    domain.Settings
	SettingsErr error
	MutationErr error
	Token       string
	LoginErr    error
	NextOrderID int
	// OnCreateOrder runs inside CreateOrder before the order is built,
	// without the fake's lock held.
	OnCreateOrder func()

	calls map[string]int
}

func NewFakeAPI() *FakeAPI {
	return &FakeAPI{Token: "token-1", NextOrderID: 1, calls: map[string]int{}}
}

func (f *FakeAPI) Update(fn func(f *FakeAPI)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *FakeAPI) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *FakeAPI) enter(name string) {
	f.mu.Lock()
	f.calls[name]++
}

func (f *FakeAPI) checkToken(token string) error {
	if token == "" || token != f.Token {
		return fmt.Errorf("%w: bad token", domain.ErrUnauthorized)
	}
	return nil
}

func (f *FakeAPI) FetchHomeData(context.Context) (domain.HomeData, error) {
	f.enter("FetchHomeData")
	defer f.mu.Unlock()
	if f.HomeErr != nil {
		return domain.HomeData{}, f.HomeErr
	}
	return domain.HomeData{Settings: f.Home.Settings, Products: append([]domain.Product(nil), f.Home.Products...)}, nil
}

func (f *FakeAPI) FetchAllProducts(context.Context) ([]domain.Product, error) {
	f.enter("FetchAllProducts")
	defer f.mu.Unlock()
	if f.AllErr != nil {
		return nil, f.AllErr
	}
	return append([]domain.Product(nil), f.All...), nil
}

func (f *FakeAPI) FetchAdminProducts(_ context.Context, page int, search, token string) (domain.ProductPage, error) {
	f.enter("FetchAdminProducts")
	defer f.mu.Unlock()
	if err := f.checkToken(token); err != nil {
		return domain.ProductPage{}, err
	}
	return domain.ProductPage{Products: append([]domain.Product(nil), f.All...), Page: page, Pages: 1, Total: len(f.All)}, nil
}

func (f *FakeAPI) CreateProduct(_ context.Context, p domain.Product, token string) (domain.Product, error) {
	f.enter("CreateProduct")
	defer f.mu.Unlock()
	if err := f.checkToken(token); err != nil {
		return domain.Product{}, err
	}
	if f.MutationErr != nil {
		return domain.Product{}, f.MutationErr
	}
	p.ID = fmt.Sprintf("p-%d", len(f.All)+1)
	f.All = append(f.All, p)
	return p, nil
}

func (f *FakeAPI) UpdateProduct(_ context.Context, p domain.Product, token string) (domain.Product, error) {
	f.enter("UpdateProduct")
	defer f.mu.Unlock()
	if err := f.checkToken(token); err != nil {
		return domain.Product{}, err
	}
	if f.MutationErr != nil {
		return domain.Product{}, f.MutationErr
	}
	return p, nil
}

func (f *FakeAPI) DeleteProduct(_ context.Context, _ string, token string) error {
	f.enter("DeleteProduct")
	defer f.mu.Unlock()
	if err := f.checkToken(token); err != nil {
		return err
	}
	return f.MutationErr
}

func (f *FakeAPI) FetchOrders(_ context.Context, token string) ([]domain.Order, error) {
	f.enter("FetchOrders")
	defer f.mu.Unlock()
	if err := f.checkToken(token); err != nil {
		return nil, err
	}
	if f.OrdersErr != nil {
		return nil, f.OrdersErr
	}
	return append([]domain.Order(nil), f.Orders...), nil
}

func (f *FakeAPI) FetchDashboardStats(_ context.Context, token string) (domain.DashboardStats, error) {
	f.enter("FetchDashboardStats")
	defer f.mu.Unlock()
	if err := f.checkToken(token); err != nil {
		return domain.DashboardStats{}, err
	}
	return f.Stats, nil
}

func (f *FakeAPI) CreateOrder(_ context.Context, req domain.OrderRequest) (domain.Order, error) {
	f.enter("CreateOrder")
	hook := f.OnCreateOrder
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.MutationErr != nil {
		return domain.Order{}, f.MutationErr
	}
	now := time.Now().UTC()
	o := domain.Order{
		ID:             fmt.Sprintf("o-%d", f.NextOrderID),
		OrderID:        fmt.Sprintf("%06d", f.NextOrderID),
		CustomerName:   req.Customer.Name,
		Phone:          req.Customer.Phone,
		Address:        req.Customer.Address,
		City:           req.Customer.City,
		Lines:          append([]domain.CartLine(nil), req.Lines...),
		Total:          req.Total,
		ShippingCharge: req.ShippingCharge,
		Status:         domain.StatusPending,
		Date:           now.Format(time.RFC3339),
		CreatedAt:      &now,
		PaymentMethod:  req.Payment.PaymentMethod,
		PaymentDetails: req.Payment.PaymentDetails,
	}
	f.NextOrderID++
	f.Orders = append([]domain.Order{o}, f.Orders...)
	return o, nil
}

func (f *FakeAPI) UpdateOrderStatus(_ context.Context, orderID string, status domain.OrderStatus, token string) (domain.Order, error) {
	f.enter("UpdateOrderStatus")
	defer f.mu.Unlock()
	if err := f.checkToken(token); err != nil {
		return domain.Order{}, err
	}
	for i := range f.Orders {
		if f.Orders[i].ID == orderID {
			f.Orders[i].Status = status
			return f.Orders[i], nil
		}
	}
	return domain.Order{}, fmt.Errorf("%w: order %s", domain.ErrNotFound, orderID)
}

func (f *FakeAPI) DeleteOrder(_ context.Context, orderID, token string) error {
	f.enter("DeleteOrder")
	defer f.mu.Unlock()
	if err := f.checkToken(token); err != nil {
		return err
	}
	for i := range f.Orders {
		if f.Orders[i].ID == orderID {
			f.Orders = append(f.Orders[:i], f.Orders[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: order %s", domain.ErrNotFound, orderID)
}

func (f *FakeAPI) FetchMessages(_ context.Context, token string) ([]domain.ContactMessage, error) {
	f.enter("FetchMessages")
	defer f.mu.Unlock()
	if err := f.checkToken(token); err != nil {
		return nil, err
	}
	return append([]domain.ContactMessage(nil), f.Messages...), nil
}

func (f *FakeAPI) CreateMessage(_ context.Context, m domain.ContactMessage) error {
	f.enter("CreateMessage")
	defer f.mu.Unlock()
	m.ID = fmt.Sprintf("m-%d", len(f.Messages)+1)
	f.Messages = append(f.Messages, m)
	return nil
}

func (f *FakeAPI) MarkMessageRead(_ context.Context, id string, isRead bool, token string) (domain.ContactMessage, error) {
	f.enter("MarkMessageRead")
	defer f.mu.Unlock()
	if err := f.checkToken(token); err != nil {
		return domain.ContactMessage{}, err
	}
	for i := range f.Messages {
		if f.Messages[i].ID == id {
			f.Messages[i].IsRead = isRead
			return f.Messages[i], nil
		}
	}
	return domain.ContactMessage{}, fmt.Errorf("%w: message %s", domain.ErrNotFound, id)
}

func (f *FakeAPI) DeleteMessage(_ context.Context, id, token string) error {
	f.enter("DeleteMessage")
	defer f.mu.Unlock()
	if err := f.checkToken(token); err != nil {
		return err
	}
	for i := range f.Messages {
		if f.Messages[i].ID == id {
			f.Messages = append(f.Messages[:i], f.Messages[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: message %s", domain.ErrNotFound, id)
}

func (f *FakeAPI) UpdateSettings(_ context.Context, patch domain.SettingsPatch, token string) (domain.Settings, error) {
	f.enter("UpdateSettings")
	defer f.mu.Unlock()
	if err := f.checkToken(token); err != nil {
		return domain.Settings{}, err
	}
	if f.SettingsErr != nil {
		return domain.Settings{}, f.SettingsErr
	}
	if v, ok := patch["contactPhone"].(string); ok {
		f.Settings.ContactPhone = v
	}
	if v, ok := patch["homepageNewArrivalsCount"].(int); ok {
		f.Settings.HomepageNewArrivalsCount = v
	}
	return f.Settings, nil
}

func (f *FakeAPI) Login(_ context.Context, email, password string) (string, error) {
	f.enter("Login")
	defer f.mu.Unlock()
	if f.LoginErr != nil {
		return "", f.LoginErr
	}
	if email == "" || password == "" {
		return "", fmt.Errorf("%w: bad credentials", domain.ErrUnauthorized)
	}
	return f.Token, nil
}

var _ domain.StorefrontAPI = (*FakeAPI)(nil)

// RecordingSink collects emitted events.
type RecordingSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *RecordingSink) Emit(_ context.Context, e domain.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *RecordingSink) Events() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Event(nil), r.events...)
}

// Named returns the events with the given name.
func (r *RecordingSink) Named(name string) []domain.Event {
	var out []domain.Event
	for _, e := range r.Events() {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}
