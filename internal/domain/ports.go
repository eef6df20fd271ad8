package domain

import "context"

// StorefrontAPI is the network port to the remote storefront backend.
// Privileged calls take the admin token explicitly.
type StorefrontAPI interface {
	FetchHomeData(ctx context.Context) (HomeData, error)
	FetchAllProducts(ctx context.Context) ([]Product, error)
	FetchAdminProducts(ctx context.Context, page int, search, token string) (ProductPage, error)
	CreateProduct(ctx context.Context, p Product, token string) (Product, error)
	UpdateProduct(ctx context.Context, p Product, token string) (Product, error)
	DeleteProduct(ctx context.Context, id, token string) error

	FetchOrders(ctx context.Context, token string) ([]Order, error)
	FetchDashboardStats(ctx context.Context, token string) (DashboardStats, error)
	CreateOrder(ctx context.Context, req OrderRequest) (Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status OrderStatus, token string) (Order, error)
	DeleteOrder(ctx context.Context, orderID, token string) error

	FetchMessages(ctx context.Context, token string) ([]ContactMessage, error)
	CreateMessage(ctx context.Context, m ContactMessage) error
	MarkMessageRead(ctx context.Context, id string, isRead bool, token string) (ContactMessage, error)
	DeleteMessage(ctx context.Context, id, token string) error

	UpdateSettings(ctx context.Context, patch SettingsPatch, token string) (Settings, error)
	Login(ctx context.Context, email, password string) (string, error)
}

// Storage is durable key/value storage for client state.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// MessageSubscriber is the port for pushed order messages.
type MessageSubscriber interface {
	// Subscribe registers the handler; ack and redelivery are the adapter's job.
	Subscribe(ctx context.Context, handler func(ctx context.Context, raw []byte) error) error
}
