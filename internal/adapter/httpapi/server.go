// Package httpapi exposes the storefront store to a view layer over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/example/storefront-core/internal/catalog"
	"github.com/example/storefront-core/internal/domain"
	"github.com/example/storefront-core/internal/store"
	"github.com/example/storefront-core/internal/usecase"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	Router *mux.Router
	store  *store.Store
	place  usecase.PlaceOrder
	log    *slog.Logger
}

// NewServer registers the view API. gatherer may be nil to skip /metrics.
func NewServer(s *store.Store, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	srv := &Server{Router: mux.NewRouter(), store: s, place: usecase.PlaceOrder{Store: s}, log: logger}
	r := srv.Router

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", srv.handleState).Methods(http.MethodGet)
	api.HandleFunc("/events", srv.handleEvents).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", srv.handleProduct).Methods(http.MethodGet)
	api.HandleFunc("/products/load", srv.handleLoadAll).Methods(http.MethodPost)
	api.HandleFunc("/rails/{rail}", srv.handleRail).Methods(http.MethodGet)
	api.HandleFunc("/selected", srv.handleSelect).Methods(http.MethodPut, http.MethodDelete)
	api.HandleFunc("/cart", srv.handleAddToCart).Methods(http.MethodPost)
	api.HandleFunc("/cart/{productId}/{size}", srv.handleSetQuantity).Methods(http.MethodPut)
	api.HandleFunc("/cart", srv.handleClearCart).Methods(http.MethodDelete)
	api.HandleFunc("/checkout", srv.handleCheckout).Methods(http.MethodPost)
	api.HandleFunc("/contact", srv.handleContact).Methods(http.MethodPost)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/login", srv.handleLogin).Methods(http.MethodPost)
	admin.HandleFunc("/logout", srv.handleLogout).Methods(http.MethodPost)
	admin.HandleFunc("/orders/seen", srv.handleOrdersSeen).Methods(http.MethodPost)
	admin.HandleFunc("/orders/refresh", srv.handleOrdersRefresh).Methods(http.MethodPost)
	admin.HandleFunc("/orders/{id}/status", srv.handleOrderStatus).Methods(http.MethodPut)
	admin.HandleFunc("/orders/{id}", srv.handleOrderDelete).Methods(http.MethodDelete)
	admin.HandleFunc("/products", srv.handleAdminProducts).Methods(http.MethodGet)
	admin.HandleFunc("/settings", srv.handleSettings).Methods(http.MethodPut)
	admin.HandleFunc("/messages/{id}/read", srv.handleMessageRead).Methods(http.MethodPut)
	admin.HandleFunc("/messages/{id}", srv.handleMessageDelete).Methods(http.MethodDelete)

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	return srv
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain error kinds to status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	msg := "internal error"
	switch {
	case errors.Is(err, domain.ErrValidation):
		code, msg = http.StatusBadRequest, domain.UserMessage(err, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		code, msg = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrNotFound):
		code, msg = http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrNetwork):
		code, msg = http.StatusBadGateway, "upstream unavailable"
	default:
		s.log.Error("request failed", "err", err)
	}
	writeJSON(w, code, map[string]string{"message": msg})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: request body: %v", domain.ErrValidation, err)
	}
	return nil
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.State())
}

// handleEvents streams state snapshots as server-sent events. Slow clients
// skip intermediate snapshots and always get the latest.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	updates := make(chan store.State, 1)
	unsubscribe := s.store.Subscribe(func(st store.State) {
		for {
			select {
			case updates <- st:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	defer unsubscribe()

	send := func(st store.State) error {
		b, err := json.Marshal(st)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "id: %d\nevent: state\ndata: %s\n\n", st.Version, b); err != nil {
			return err
		}
		return rc.Flush()
	}
	if err := send(s.store.State()); err != nil {
		return
	}
	keepAlive := time.NewTicker(15 * time.Second)
	defer keepAlive.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case st := <-updates:
			if err := send(st); err != nil {
				return
			}
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			_ = rc.Flush()
		}
	}
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := s.store.Product(mux.Vars(r)["id"])
	if !ok {
		s.writeError(w, domain.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleLoadAll(w http.ResponseWriter, r *http.Request) {
	if err := s.store.EnsureAllProductsLoaded(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type railResponse struct {
	Items []domain.Product `json:"items"`
	More  bool             `json:"more"`
}

func (s *Server) handleRail(w http.ResponseWriter, r *http.Request) {
	rail := catalog.Rail(mux.Vars(r)["rail"])
	if !rail.Valid() {
		s.writeError(w, domain.ErrNotFound)
		return
	}
	items, more := s.store.Rail(rail)
	if items == nil {
		items = []domain.Product{}
	}
	writeJSON(w, http.StatusOK, railResponse{Items: items, More: more})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodDelete {
		s.store.SetSelectedProduct(nil)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	var body struct {
		ProductID string `json:"productId"`
	}
	if err := decode(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	p, ok := s.store.Product(body.ProductID)
	if !ok {
		s.writeError(w, domain.ErrNotFound)
		return
	}
	s.store.SetSelectedProduct(&p)
	w.WriteHeader(http.StatusNoContent)
}

type cartResponse struct {
	Cart         []domain.CartLine    `json:"cart"`
	CartTotal    float64              `json:"cartTotal"`
	Notification *domain.Notification `json:"notification,omitempty"`
}

func (s *Server) writeCart(w http.ResponseWriter) {
	st := s.store.State()
	cart := st.Cart
	if cart == nil {
		cart = []domain.CartLine{}
	}
	writeJSON(w, http.StatusOK, cartResponse{Cart: cart, CartTotal: st.CartTotal, Notification: st.Notification})
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
		Size      string `json:"size"`
	}
	if err := decode(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	p, ok := s.store.Product(body.ProductID)
	if !ok {
		s.writeError(w, domain.ErrNotFound)
		return
	}
	if body.Quantity == 0 {
		body.Quantity = 1
	}
	s.store.AddToCart(r.Context(), p, body.Quantity, body.Size)
	s.writeCart(w)
}

func (s *Server) handleSetQuantity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := decode(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	v := mux.Vars(r)
	s.store.UpdateCartQuantity(r.Context(), v["productId"], v["size"], body.Quantity)
	s.writeCart(w)
}

func (s *Server) handleClearCart(w http.ResponseWriter, _ *http.Request) {
	s.store.ClearCart()
	s.writeCart(w)
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Customer       domain.Customer    `json:"customerDetails"`
		Payment        domain.PaymentInfo `json:"paymentInfo"`
		ShippingCharge float64            `json:"shippingCharge"`
	}
	if err := decode(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	order, err := s.place.Execute(r.Context(), body.Customer, body.Payment, body.ShippingCharge)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var m domain.ContactMessage
	if err := decode(r, &m); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.AddContactMessage(r.Context(), m); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	if !s.store.Login(r.Context(), body.Email, body.Password) {
		s.writeError(w, domain.ErrUnauthorized)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.store.Logout()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOrdersSeen(w http.ResponseWriter, r *http.Request) {
	s.store.MarkOrdersAsSeen(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// run adapts a store action that reports its own failures.
func (s *Server) run(w http.ResponseWriter, fn func() error) {
	if err := fn(); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOrdersRefresh(w http.ResponseWriter, r *http.Request) {
	s.run(w, func() error { return s.store.RefreshOrders(r.Context()) })
}

func (s *Server) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status domain.OrderStatus `json:"status"`
	}
	if err := decode(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	id := mux.Vars(r)["id"]
	s.run(w, func() error { return s.store.UpdateOrderStatus(r.Context(), id, body.Status) })
}

func (s *Server) handleOrderDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.run(w, func() error { return s.store.DeleteOrder(r.Context(), id) })
}

func (s *Server) handleAdminProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := 1
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeError(w, domain.NewValidationError("page must be a positive number"))
			return
		}
		page = n
	}
	s.run(w, func() error { return s.store.LoadAdminProducts(r.Context(), page, q.Get("search")) })
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	var patch domain.SettingsPatch
	if err := decode(r, &patch); err != nil {
		s.writeError(w, err)
		return
	}
	s.run(w, func() error { return s.store.UpdateSettings(r.Context(), patch) })
}

func (s *Server) handleMessageRead(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IsRead bool `json:"isRead"`
	}
	if err := decode(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	id := mux.Vars(r)["id"]
	s.run(w, func() error { return s.store.MarkMessageAsRead(r.Context(), id, body.IsRead) })
}

func (s *Server) handleMessageDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.run(w, func() error { return s.store.DeleteContactMessage(r.Context(), id) })
}

// Serve runs srv until ctx is done, then shuts it down gracefully.
func Serve(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
