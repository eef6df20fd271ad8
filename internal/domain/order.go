package domain

import "time"

type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusConfirmed OrderStatus = "Confirmed"
	StatusShipped   OrderStatus = "Shipped"
	StatusDelivered OrderStatus = "Delivered"
	StatusCancelled OrderStatus = "Cancelled"
)

var statusRank = map[OrderStatus]int{
	StatusPending:   0,
	StatusConfirmed: 1,
	StatusShipped:   2,
	StatusDelivered: 3,
}

func (s OrderStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok || s == StatusCancelled
}

// Terminal reports whether no further transition is allowed.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo allows forward moves along the lifecycle and cancellation
// from any non-terminal status.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !s.Valid() || !next.Valid() || s.Terminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	return statusRank[next] > statusRank[s]
}

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "COD"
	PaymentOnline PaymentMethod = "Online"
)

type PaymentDetails struct {
	PaymentNumber string  `json:"paymentNumber"`
	Method        string  `json:"method"`
	Amount        float64 `json:"amount"`
	TransactionID string  `json:"transactionId"`
}

type PaymentInfo struct {
	PaymentMethod  PaymentMethod   `json:"paymentMethod"`
	PaymentDetails *PaymentDetails `json:"paymentDetails,omitempty"`
}

type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
}

// Order is a placed order. Lines are a frozen copy of the cart at checkout.
type Order struct {
	ID             string          `json:"id"`
	OrderID        string          `json:"orderId"`
	CustomerName   string          `json:"customerName"`
	Phone          string          `json:"phone"`
	Address        string          `json:"address"`
	City           string          `json:"city"`
	Lines          []CartLine      `json:"cartItems"`
	Total          float64         `json:"total"`
	ShippingCharge float64         `json:"shippingCharge,omitempty"`
	Status         OrderStatus     `json:"status"`
	Date           string          `json:"date"`
	CreatedAt      *time.Time      `json:"createdAt,omitempty"`
	PaymentMethod  PaymentMethod   `json:"paymentMethod"`
	PaymentDetails *PaymentDetails `json:"paymentDetails,omitempty"`
}

// OrderRequest is the checkout payload.
type OrderRequest struct {
	Customer       Customer    `json:"customerDetails"`
	Lines          []CartLine  `json:"cartItems"`
	Total          float64     `json:"total"`
	Payment        PaymentInfo `json:"paymentInfo"`
	ShippingCharge float64     `json:"shippingCharge"`
}

type DashboardStats struct {
	TotalOrders        int     `json:"totalOrders"`
	OnlineTransactions int     `json:"onlineTransactions"`
	TotalRevenue       float64 `json:"totalRevenue"`
	TotalProducts      int     `json:"totalProducts"`
}

type ContactMessage struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Date    string `json:"date"`
	IsRead  bool   `json:"isRead"`
}
