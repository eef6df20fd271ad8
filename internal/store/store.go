// Package store owns the storefront client state. Every mutation goes
// through an action on Store, which updates state and then notifies
// subscribers synchronously on the calling goroutine.
package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/example/storefront-core/internal/cart"
	"github.com/example/storefront-core/internal/catalog"
	"github.com/example/storefront-core/internal/domain"
	"github.com/example/storefront-core/internal/freshness"
	"github.com/example/storefront-core/internal/notify"
	"github.com/example/storefront-core/internal/persist"
)

// DefaultFullLoadDelay defers the full catalog fetch past the first render.
const DefaultFullLoadDelay = 100 * time.Millisecond

type Pagination struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Total int `json:"total"`
}

// State is an immutable snapshot. Callers must not modify its slices.
type State struct {
	Version              uint64                  `json:"version"`
	Loading              bool                    `json:"loading"`
	Products             []domain.Product        `json:"products"`
	FullProductsLoaded   bool                    `json:"fullProductsLoaded"`
	SelectedProduct      *domain.Product         `json:"selectedProduct"`
	Settings             domain.Settings         `json:"settings"`
	Cart                 []domain.CartLine       `json:"cart"`
	CartTotal            float64                 `json:"cartTotal"`
	Notification         *domain.Notification    `json:"notification"`
	Orders               []domain.Order          `json:"orders"`
	NewOrdersCount       int                     `json:"newOrdersCount"`
	OrdersSeenAt         time.Time               `json:"ordersSeenAt"`
	ContactMessages      []domain.ContactMessage `json:"contactMessages"`
	DashboardStats       *domain.DashboardStats  `json:"dashboardStats"`
	AdminProducts        []domain.Product        `json:"adminProducts"`
	AdminPagination      Pagination              `json:"adminProductsPagination"`
	IsAdminAuthenticated bool                    `json:"isAdminAuthenticated"`
	LoginRequired        bool                    `json:"loginRequired"`
}

type Options struct {
	API domain.StorefrontAPI
	// Storage is optional; without it nothing is persisted.
	Storage         domain.Storage
	Sink            domain.EventSink
	Logger          *slog.Logger
	Scheduler       notify.Scheduler
	NotificationTTL time.Duration
	FullLoadDelay   time.Duration
	Now             func() time.Time
	// AuthToken resumes an admin session held by the embedding app.
	AuthToken string
}

type Store struct {
	mu sync.Mutex

	api     domain.StorefrontAPI
	persist *persist.Adapter
	recon   catalog.Reconciler
	log     *slog.Logger
	sched   notify.Scheduler
	now     func() time.Time
	delay   time.Duration

	version       uint64
	loading       bool
	products      []domain.Product
	fullLoaded    bool
	selected      *domain.Product
	settings      domain.Settings
	cart          *cart.Cart
	notes         *notify.Queue
	orders        []domain.Order
	tracker       *freshness.Tracker
	messages      []domain.ContactMessage
	stats         *domain.DashboardStats
	adminProducts []domain.Product
	pagination    Pagination
	token         string
	loginRequired bool

	pubMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int

	saveMu    sync.Mutex
	lastSaved uint64

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	fullTimer notify.Timer
}

func New(opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sink := opts.Sink
	if sink == nil {
		sink = domain.DiscardSink{}
	}
	sched := opts.Scheduler
	if sched == nil {
		sched = notify.WallClock()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	delay := opts.FullLoadDelay
	if delay <= 0 {
		delay = DefaultFullLoadDelay
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		api:      opts.API,
		recon:    catalog.Reconciler{API: opts.API, Sink: sink, Logger: logger},
		log:      logger,
		sched:    sched,
		now:      now,
		delay:    delay,
		loading:  true,
		products: []domain.Product{},
		settings: domain.DefaultSettings(),
		tracker:  freshness.New(time.Time{}),
		subs:     make(map[int]func(State)),
		token:    opts.AuthToken,
		ctx:      ctx,
		cancel:   cancel,
	}
	if opts.Storage != nil {
		s.persist = &persist.Adapter{Storage: opts.Storage, Logger: logger}
	}
	// The lookup runs inside cart calls, which always hold s.mu.
	s.cart = cart.New(sink, s.productLocked)
	s.notes = notify.New(opts.NotificationTTL, sched, s.publish)
	return s
}

func (s *Store) productLocked(id string) (domain.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// Subscribe registers fn for every state change. fn runs synchronously and
// must not call mutating actions; hand those off to another goroutine.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.pubMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.pubMu.Unlock()
	return func() {
		s.pubMu.Lock()
		delete(s.subs, id)
		s.pubMu.Unlock()
	}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// update runs fn under the state lock, then delivers the new snapshot and,
// when fn reports a change to the persisted slice, saves it.
func (s *Store) update(fn func() (dirty bool)) State {
	s.mu.Lock()
	dirty := fn()
	s.version++
	snap := s.snapshotLocked()
	var slice *persist.Slice
	if dirty && s.persist != nil {
		sl := s.sliceLocked()
		slice = &sl
	}
	s.pubMu.Lock()
	s.mu.Unlock()
	for _, sub := range s.subs {
		sub(snap)
	}
	s.pubMu.Unlock()

	if slice != nil {
		s.save(snap.Version, *slice)
	}
	return snap
}

func (s *Store) publish() { s.update(func() bool { return false }) }

func (s *Store) save(version uint64, slice persist.Slice) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if version <= s.lastSaved {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), 5*time.Second)
	defer cancel()
	if err := s.persist.Save(ctx, slice); err != nil {
		s.log.Error("persist state failed", "err", err)
		return
	}
	s.lastSaved = version
}

func (s *Store) sliceLocked() persist.Slice {
	return persist.Slice{
		Cart:     s.cart.Lines(),
		Settings: s.settings.Clone(),
		Products: slices.Clone(s.products),
	}
}

func (s *Store) snapshotLocked() State {
	st := State{
		Version:              s.version,
		Loading:              s.loading,
		Products:             slices.Clone(s.products),
		FullProductsLoaded:   s.fullLoaded,
		Settings:             s.settings.Clone(),
		Cart:                 s.cart.Lines(),
		CartTotal:            s.cart.Total(),
		Orders:               slices.Clone(s.orders),
		NewOrdersCount:       s.tracker.Count(),
		OrdersSeenAt:         s.tracker.Watermark(),
		ContactMessages:      slices.Clone(s.messages),
		AdminProducts:        slices.Clone(s.adminProducts),
		AdminPagination:      s.pagination,
		IsAdminAuthenticated: s.token != "" && !s.loginRequired,
		LoginRequired:        s.loginRequired,
	}
	if s.selected != nil {
		p := s.selected.Clone()
		st.SelectedProduct = &p
	}
	if s.stats != nil {
		stats := *s.stats
		st.DashboardStats = &stats
	}
	if n, ok := s.notes.Current(); ok {
		st.Notification = &n
	}
	return st
}

// Notify shows a transient message.
func (s *Store) Notify(message string, severity domain.Severity) {
	s.update(func() bool {
		s.notes.Notify(message, severity)
		return false
	})
}

// Wait blocks until deferred background loads have finished.
func (s *Store) Wait() { s.wg.Wait() }

// Close cancels background work and pending timers.
func (s *Store) Close() {
	s.cancel()
	s.mu.Lock()
	t := s.fullTimer
	s.fullTimer = nil
	s.mu.Unlock()
	if t != nil && t.Stop() {
		s.wg.Done()
	}
	s.notes.Close()
	s.wg.Wait()
}
