// Package httpclient implements domain.StorefrontAPI against the storefront
// backend's JSON API.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/example/storefront-core/internal/domain"
)

const DefaultTimeout = 10 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

// New returns a client for baseURL, for example "http://localhost:5000/api".
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     logger,
	}
}

type errorBody struct {
	Message string `json:"message"`
}

// do sends body as JSON and decodes a 2xx response into out when out is
// non-nil. Non-2xx responses map onto domain error kinds.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", domain.ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()
	c.log.Debug("api call", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(method, path, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", domain.ErrNetwork, method, path, err)
	}
	return nil
}

func statusError(method, path string, resp *http.Response) error {
	var eb errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &eb)

	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if eb.Message != "" {
			return domain.NewValidationError(eb.Message)
		}
		return fmt.Errorf("%w: %s %s: status %d", domain.ErrValidation, method, path, resp.StatusCode)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s %s: status %d", domain.ErrUnauthorized, method, path, resp.StatusCode)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, method, path)
	}
	if eb.Message != "" {
		return fmt.Errorf("%w: %s %s: status %d: %s", domain.ErrNetwork, method, path, resp.StatusCode, eb.Message)
	}
	return fmt.Errorf("%w: %s %s: status %d", domain.ErrNetwork, method, path, resp.StatusCode)
}

func (c *Client) FetchHomeData(ctx context.Context) (domain.HomeData, error) {
	var out domain.HomeData
	err := c.do(ctx, http.MethodGet, "/page-data/home", "", nil, &out)
	return out, err
}

func (c *Client) FetchAllProducts(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	err := c.do(ctx, http.MethodGet, "/products", "", nil, &out)
	return out, err
}

func (c *Client) FetchAdminProducts(ctx context.Context, page int, search, token string) (domain.ProductPage, error) {
	q := url.Values{"page": {strconv.Itoa(page)}, "search": {search}}
	var out domain.ProductPage
	err := c.do(ctx, http.MethodGet, "/products/admin?"+q.Encode(), token, nil, &out)
	return out, err
}

func (c *Client) CreateProduct(ctx context.Context, p domain.Product, token string) (domain.Product, error) {
	var out domain.Product
	err := c.do(ctx, http.MethodPost, "/products", token, p, &out)
	return out, err
}

func (c *Client) UpdateProduct(ctx context.Context, p domain.Product, token string) (domain.Product, error) {
	if p.ID == "" {
		return domain.Product{}, domain.NewValidationError("Product id is required.")
	}
	var out domain.Product
	err := c.do(ctx, http.MethodPut, "/products/"+url.PathEscape(p.ID), token, p, &out)
	return out, err
}

func (c *Client) DeleteProduct(ctx context.Context, id, token string) error {
	return c.do(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), token, nil, nil)
}

func (c *Client) FetchOrders(ctx context.Context, token string) ([]domain.Order, error) {
	var out []domain.Order
	err := c.do(ctx, http.MethodGet, "/orders", token, nil, &out)
	return out, err
}

func (c *Client) FetchDashboardStats(ctx context.Context, token string) (domain.DashboardStats, error) {
	var out domain.DashboardStats
	err := c.do(ctx, http.MethodGet, "/orders/stats", token, nil, &out)
	return out, err
}

func (c *Client) CreateOrder(ctx context.Context, req domain.OrderRequest) (domain.Order, error) {
	var out domain.Order
	if err := c.do(ctx, http.MethodPost, "/orders", "", req, &out); err != nil {
		return domain.Order{}, withFallback(err, "Failed to place order. Please check your details.")
	}
	return out, nil
}

// withFallback gives a validation error that carries no server message a
// user-facing one. Other errors pass through.
func withFallback(err error, msg string) error {
	if !errors.Is(err, domain.ErrValidation) || domain.UserMessage(err, "") != "" {
		return err
	}
	return domain.NewValidationError(msg)
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus, token string) (domain.Order, error) {
	body := struct {
		Status domain.OrderStatus `json:"status"`
	}{status}
	var out domain.Order
	err := c.do(ctx, http.MethodPut, "/orders/"+url.PathEscape(orderID)+"/status", token, body, &out)
	return out, err
}

func (c *Client) DeleteOrder(ctx context.Context, orderID, token string) error {
	return c.do(ctx, http.MethodDelete, "/orders/"+url.PathEscape(orderID), token, nil, nil)
}

func (c *Client) FetchMessages(ctx context.Context, token string) ([]domain.ContactMessage, error) {
	var out []domain.ContactMessage
	err := c.do(ctx, http.MethodGet, "/messages", token, nil, &out)
	return out, err
}

func (c *Client) CreateMessage(ctx context.Context, m domain.ContactMessage) error {
	return c.do(ctx, http.MethodPost, "/messages", "", m, nil)
}

func (c *Client) MarkMessageRead(ctx context.Context, id string, isRead bool, token string) (domain.ContactMessage, error) {
	body := struct {
		IsRead bool `json:"isRead"`
	}{isRead}
	var out domain.ContactMessage
	err := c.do(ctx, http.MethodPut, "/messages/"+url.PathEscape(id)+"/read", token, body, &out)
	return out, err
}

func (c *Client) DeleteMessage(ctx context.Context, id, token string) error {
	return c.do(ctx, http.MethodDelete, "/messages/"+url.PathEscape(id), token, nil, nil)
}

func (c *Client) UpdateSettings(ctx context.Context, patch domain.SettingsPatch, token string) (domain.Settings, error) {
	var out domain.Settings
	if err := c.do(ctx, http.MethodPut, "/settings", token, patch, &out); err != nil {
		return domain.Settings{}, withFallback(err, "Failed to update settings.")
	}
	return out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, password}
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", body, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("%w: login response has no token", domain.ErrUnauthorized)
	}
	return out.Token, nil
}

var _ domain.StorefrontAPI = (*Client)(nil)
