package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/example/storefront-core/internal/adapter/storage"
	"github.com/example/storefront-core/internal/catalog"
	"github.com/example/storefront-core/internal/domain"
	"github.com/example/storefront-core/internal/notify"
	"github.com/example/storefront-core/internal/persist"
	"github.com/example/storefront-core/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	bg      = context.Background()
	fixedAt = time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
)

type harness struct {
	store *Store
	api   *testutil.FakeAPI
	sched *testutil.ManualScheduler
	sink  *testutil.RecordingSink
	st    *storage.MemoryStorage
}

func newHarness(t *testing.T, configure ...func(*Options)) *harness {
	t.Helper()
	h := &harness{
		api:   testutil.NewFakeAPI(),
		sched: &testutil.ManualScheduler{},
		sink:  &testutil.RecordingSink{},
		st:    storage.NewMemoryStorage(),
	}
	opts := Options{
		API:       h.api,
		Storage:   h.st,
		Sink:      h.sink,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Scheduler: h.sched,
		Now:       func() time.Time { return fixedAt },
	}
	for _, fn := range configure {
		fn(&opts)
	}
	h.store = New(opts)
	t.Cleanup(h.store.Close)
	return h
}

func liteAndFull(api *testutil.FakeAPI) {
	api.Home = domain.HomeData{Products: []domain.Product{
		{ID: "1", Name: "one", IsNewArrival: true, Images: []string{"1a"}},
		{ID: "2", Name: "two", IsTrending: true, Images: []string{"2a"}},
	}}
	api.All = []domain.Product{
		{ID: "1", Name: "one", IsNewArrival: true, Images: []string{"1a", "1b"}},
		{ID: "2", Name: "two", IsTrending: true, Images: []string{"2a", "2b"}},
		{ID: "3", Name: "three", Images: []string{"3a"}},
	}
}

func productByID(ps []domain.Product, id string) domain.Product {
	for _, p := range ps {
		if p.ID == id {
			return p
		}
	}
	return domain.Product{}
}

func TestBootLiteThenFull(t *testing.T) {
	h := newHarness(t)
	liteAndFull(h.api)

	h.store.Boot(bg)
	st := h.store.State()
	assert.False(t, st.Loading)
	assert.False(t, st.FullProductsLoaded)
	assert.Len(t, st.Products, 2)
	assert.Zero(t, h.api.Calls("FetchAllProducts"))

	h.sched.Advance(DefaultFullLoadDelay)
	h.store.Wait()

	st = h.store.State()
	assert.True(t, st.FullProductsLoaded)
	assert.Len(t, st.Products, 3)
	assert.Len(t, productByID(st.Products, "1").Images, 2)
	assert.Equal(t, 1, h.api.Calls("FetchAllProducts"))

	require.NoError(t, h.store.EnsureAllProductsLoaded(bg))
	assert.Equal(t, 1, h.api.Calls("FetchAllProducts"))
}

func TestBootFallbackSkipsFullLoad(t *testing.T) {
	h := newHarness(t)
	h.api.HomeErr = domain.ErrNetwork

	h.store.Boot(bg)
	st := h.store.State()
	assert.True(t, st.FullProductsLoaded)
	assert.NotEmpty(t, st.Products)
	assert.Equal(t, len(catalog.SampleCatalog()), len(st.Products))

	h.sched.Advance(time.Second)
	h.store.Wait()
	assert.Zero(t, h.api.Calls("FetchAllProducts"))
}

func TestFullLoadFailureKeepsLiteAndRetries(t *testing.T) {
	h := newHarness(t)
	liteAndFull(h.api)
	h.api.AllErr = domain.ErrNetwork

	h.store.Boot(bg)
	h.sched.Advance(DefaultFullLoadDelay)
	h.store.Wait()

	st := h.store.State()
	assert.False(t, st.FullProductsLoaded)
	assert.Len(t, st.Products, 2)

	h.api.Update(func(f *testutil.FakeAPI) { f.AllErr = nil })
	require.NoError(t, h.store.EnsureAllProductsLoaded(bg))
	st = h.store.State()
	assert.True(t, st.FullProductsLoaded)
	assert.Len(t, st.Products, 3)
}

func TestLateLiteResponseConverges(t *testing.T) {
	h := newHarness(t)
	liteAndFull(h.api)

	require.NoError(t, h.store.EnsureAllProductsLoaded(bg))
	h.store.LoadInitialData(bg)

	st := h.store.State()
	assert.True(t, st.FullProductsLoaded)
	assert.Len(t, st.Products, 3)
	assert.Len(t, productByID(st.Products, "2").Images, 2)
}

func TestAddToCartWithoutSizeNotifies(t *testing.T) {
	h := newHarness(t)
	p := domain.Product{ID: "7", Name: "Lawn", Price: 1500}

	h.store.AddToCart(bg, p, 1, "")
	st := h.store.State()
	assert.Empty(t, st.Cart)
	assert.Zero(t, st.CartTotal)
	require.NotNil(t, st.Notification)
	assert.Equal(t, "Please select a size.", st.Notification.Message)
	assert.Equal(t, domain.SeverityError, st.Notification.Severity)
	assert.Empty(t, h.sink.Named(domain.EventAddToCart))
}

func TestCartActionsKeepTotalAndPersist(t *testing.T) {
	h := newHarness(t)
	p := domain.Product{ID: "7", Name: "Lawn", Price: 1500, Images: []string{"7a"}}

	h.store.AddToCart(bg, p, 1, "M")
	assert.Equal(t, "Lawn (Size: M) added to cart!", h.store.State().Notification.Message)
	h.store.AddToCart(bg, p, 1, "M")
	st := h.store.State()
	assert.Equal(t, "Quantity updated for Lawn (Size: M)!", st.Notification.Message)
	assert.Equal(t, 3000.0, st.CartTotal)

	reloaded := New(Options{API: h.api, Storage: h.st, Scheduler: h.sched, Logger: h.store.log})
	defer reloaded.Close()
	require.NoError(t, reloaded.Hydrate(bg))
	rst := reloaded.State()
	require.Len(t, rst.Cart, 1)
	assert.Equal(t, domain.CartLine{ProductID: "7", Name: "Lawn", Price: 1500, Quantity: 2, Image: "7a", Size: "M"}, rst.Cart[0])
	assert.Equal(t, 3000.0, rst.CartTotal)

	h.store.UpdateCartQuantity(bg, "7", "M", 0)
	assert.Empty(t, h.store.State().Cart)
	h.store.UpdateCartQuantity(bg, "7", "M", 0)
	assert.Len(t, h.sink.Named(domain.EventRemoveFromCart), 1)

	h.store.AddToCart(bg, p, 4, "S")
	h.store.ClearCart()
	assert.Zero(t, h.store.State().CartTotal)
}

func TestHydrateDropsCorruptCart(t *testing.T) {
	h := newHarness(t)
	blob := `{"cart":[{"id":"7","size":"M","price":"bad","quantity":2},{"id":"8","size":"S","price":250,"quantity":2}],"cartTotal":1}`
	require.NoError(t, h.st.Put(bg, persist.SliceKey, []byte(blob)))

	require.NoError(t, h.store.Hydrate(bg))
	st := h.store.State()
	require.Len(t, st.Cart, 1)
	assert.Equal(t, "8", st.Cart[0].ProductID)
	assert.Equal(t, 500.0, st.CartTotal)
	assert.Nil(t, st.Notification)
}

func TestHydrateDiscardsMalformedBlob(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.st.Put(bg, persist.SliceKey, []byte(`[1,2,3]`)))
	require.NoError(t, h.store.Hydrate(bg))
	st := h.store.State()
	assert.Empty(t, st.Cart)
	assert.Equal(t, domain.DefaultSettings(), st.Settings)
}

func TestOrderFreshnessFlow(t *testing.T) {
	h := newHarness(t)
	before := fixedAt.Add(-time.Hour)
	h.api.Orders = []domain.Order{
		{ID: "o1", Status: domain.StatusPending, CreatedAt: &before},
		{ID: "o2", Status: domain.StatusPending, Date: "2026-01-01"},
	}

	require.True(t, h.store.Login(bg, "admin@example.com", "secret"))
	st := h.store.State()
	assert.True(t, st.IsAdminAuthenticated)
	assert.Len(t, st.Orders, 2)
	assert.Equal(t, 2, st.NewOrdersCount)
	require.NotNil(t, st.DashboardStats)

	h.store.MarkOrdersAsSeen(bg)
	st = h.store.State()
	assert.Zero(t, st.NewOrdersCount)
	assert.Equal(t, fixedAt, st.OrdersSeenAt)

	fresh := fixedAt.Add(time.Second)
	stale := fixedAt.Add(-time.Second)
	assert.True(t, h.store.ReceiveOrder(domain.Order{ID: "o3", CreatedAt: &fresh}))
	assert.True(t, h.store.ReceiveOrder(domain.Order{ID: "o4", CreatedAt: &stale}))
	st = h.store.State()
	assert.Equal(t, 1, st.NewOrdersCount)
	assert.Equal(t, "o4", st.Orders[0].ID)

	wm, err := (persist.Adapter{Storage: h.st}).LoadWatermark(bg)
	require.NoError(t, err)
	assert.True(t, fixedAt.Equal(wm))

	require.NoError(t, h.store.RefreshOrders(bg))
	assert.Zero(t, h.store.State().NewOrdersCount)
}

func TestReceiveOrderIgnoredWithoutSession(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.store.ReceiveOrder(domain.Order{ID: "x"}))
	assert.Empty(t, h.store.State().Orders)
}

func TestLoginFailureNotifies(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.store.Login(bg, "", ""))
	st := h.store.State()
	assert.False(t, st.IsAdminAuthenticated)
	assert.Equal(t, "Incorrect email or password.", st.Notification.Message)
}

func TestAuthorizationFailureFlagsLoginAndKeepsState(t *testing.T) {
	h := newHarness(t)
	h.api.Orders = []domain.Order{{ID: "o1", Status: domain.StatusPending, Date: "2026-01-01"}}
	require.True(t, h.store.Login(bg, "a", "b"))

	h.api.Update(func(f *testutil.FakeAPI) { f.Token = "rotated" })
	err := h.store.UpdateOrderStatus(bg, "o1", domain.StatusConfirmed)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	st := h.store.State()
	assert.True(t, st.LoginRequired)
	assert.False(t, st.IsAdminAuthenticated)
	require.Len(t, st.Orders, 1)
	assert.Equal(t, domain.StatusPending, st.Orders[0].Status)
	assert.Equal(t, domain.SeverityError, st.Notification.Severity)

	require.True(t, h.store.Login(bg, "a", "b"))
	assert.False(t, h.store.State().LoginRequired)
}

func TestUpdateOrderStatus(t *testing.T) {
	h := newHarness(t)
	h.api.Orders = []domain.Order{{ID: "o1", Status: domain.StatusShipped, Date: "2026-01-01"}}
	require.True(t, h.store.Login(bg, "a", "b"))

	err := h.store.UpdateOrderStatus(bg, "o1", domain.StatusPending)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, h.api.Calls("UpdateOrderStatus"))

	require.NoError(t, h.store.UpdateOrderStatus(bg, "o1", domain.StatusDelivered))
	st := h.store.State()
	assert.Equal(t, domain.StatusDelivered, st.Orders[0].Status)
	assert.Equal(t, "Order o1 status updated to Delivered.", st.Notification.Message)
}

func TestAddOrderAndDelete(t *testing.T) {
	h := newHarness(t)
	lines := []domain.CartLine{{ProductID: "7", Size: "M", Price: 1500, Quantity: 2}}

	order, err := h.store.AddOrder(bg, domain.Customer{Name: "Rina"}, lines, 3000, domain.PaymentInfo{PaymentMethod: domain.PaymentCOD}, 60)
	require.NoError(t, err)
	assert.Equal(t, 60.0, order.ShippingCharge)
	assert.Empty(t, h.store.State().Orders, "guests do not see the order list")

	lines[0].Quantity = 99
	assert.Equal(t, 2, order.Lines[0].Quantity)

	require.True(t, h.store.Login(bg, "a", "b"))
	second, err := h.store.AddOrder(bg, domain.Customer{Name: "Sumi"}, lines, 1, domain.PaymentInfo{PaymentMethod: domain.PaymentOnline}, 0)
	require.NoError(t, err)
	st := h.store.State()
	assert.Equal(t, second.ID, st.Orders[0].ID)

	require.NoError(t, h.store.DeleteOrder(bg, second.ID))
	for _, o := range h.store.State().Orders {
		assert.NotEqual(t, second.ID, o.ID)
	}

	h.api.Update(func(f *testutil.FakeAPI) { f.MutationErr = domain.ErrNetwork })
	_, err = h.store.AddOrder(bg, domain.Customer{}, nil, 0, domain.PaymentInfo{}, 0)
	assert.ErrorIs(t, err, domain.ErrNetwork)
}

func TestLogoutClearsAdminState(t *testing.T) {
	h := newHarness(t)
	h.api.Orders = []domain.Order{{ID: "o1", Date: "2026-01-01"}}
	h.api.Messages = []domain.ContactMessage{{ID: "m1"}}
	require.True(t, h.store.Login(bg, "a", "b"))

	h.store.Logout()
	st := h.store.State()
	assert.False(t, st.IsAdminAuthenticated)
	assert.Empty(t, st.Orders)
	assert.Empty(t, st.ContactMessages)
	assert.Nil(t, st.DashboardStats)
	assert.Zero(t, st.NewOrdersCount)
	assert.Equal(t, "You have been logged out.", st.Notification.Message)
}

func TestUpdateSettingsReplacesAndPersists(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.store.Login(bg, "a", "b"))
	h.api.Update(func(f *testutil.FakeAPI) { f.Settings = domain.DefaultSettings() })

	require.NoError(t, h.store.UpdateSettings(bg, domain.SettingsPatch{"contactPhone": "+8801"}))
	assert.Equal(t, "+8801", h.store.State().Settings.ContactPhone)

	restored, err := (persist.Adapter{Storage: h.st}).Load(bg, persist.Slice{Settings: domain.DefaultSettings()})
	require.NoError(t, err)
	assert.Equal(t, "+8801", restored.Settings.ContactPhone)

	h.api.Update(func(f *testutil.FakeAPI) { f.SettingsErr = domain.ErrNetwork })
	err = h.store.UpdateSettings(bg, domain.SettingsPatch{"contactPhone": "x"})
	require.Error(t, err)
	assert.Equal(t, "+8801", h.store.State().Settings.ContactPhone)
	assert.Equal(t, "Error: Failed to update settings.", h.store.State().Notification.Message)

	h.api.Update(func(f *testutil.FakeAPI) { f.SettingsErr = domain.NewValidationError("Phone is required.") })
	err = h.store.UpdateSettings(bg, domain.SettingsPatch{"contactPhone": ""})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "Error: Phone is required.", h.store.State().Notification.Message)
}

func TestProductAdminActions(t *testing.T) {
	h := newHarness(t)
	h.store.SetProducts([]domain.Product{{ID: "1", Name: "old"}})

	err := h.store.AddProduct(bg, domain.Product{Name: "new"})
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.True(t, h.store.State().LoginRequired)

	require.True(t, h.store.Login(bg, "a", "b"))
	require.NoError(t, h.store.AddProduct(bg, domain.Product{Name: "new"}))
	st := h.store.State()
	require.Len(t, st.Products, 2)
	assert.Equal(t, "new", st.Products[0].Name)

	require.NoError(t, h.store.UpdateProduct(bg, domain.Product{ID: "1", Name: "renamed"}))
	p, ok := h.store.Product("1")
	require.True(t, ok)
	assert.Equal(t, "renamed", p.Name)

	require.NoError(t, h.store.DeleteProduct(bg, "1"))
	_, ok = h.store.Product("1")
	assert.False(t, ok)

	require.NoError(t, h.store.LoadAdminProducts(bg, 2, "lawn"))
	assert.Equal(t, 2, h.store.State().AdminPagination.Page)
}

func TestContactMessages(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.AddContactMessage(bg, domain.ContactMessage{Name: "Asha", Message: "hi"}))

	require.True(t, h.store.Login(bg, "a", "b"))
	st := h.store.State()
	require.Len(t, st.ContactMessages, 1)
	id := st.ContactMessages[0].ID

	require.NoError(t, h.store.MarkMessageAsRead(bg, id, true))
	assert.True(t, h.store.State().ContactMessages[0].IsRead)
	assert.Equal(t, "Message marked as read.", h.store.State().Notification.Message)

	require.NoError(t, h.store.DeleteContactMessage(bg, id))
	assert.Empty(t, h.store.State().ContactMessages)
}

func TestRail(t *testing.T) {
	h := newHarness(t)
	h.store.SetProducts([]domain.Product{
		{ID: "10", IsNewArrival: true},
		{ID: "20", IsNewArrival: true},
		{ID: "A", IsNewArrival: true, NewArrivalOrder: domain.Pinned(1)},
		{ID: "D", IsNewArrival: true, NewArrivalOrder: domain.Pinned(2)},
		{ID: "30", IsNewArrival: true},
	})

	items, more := h.store.Rail(catalog.RailNewArrivals)
	assert.True(t, more)
	require.Len(t, items, domain.DefaultRailCount)
	got := []string{items[0].ID, items[1].ID, items[2].ID, items[3].ID}
	assert.Equal(t, []string{"A", "D", "30", "20"}, got)

	items, more = h.store.Rail(catalog.RailTrending)
	assert.Empty(t, items)
	assert.False(t, more)
}

func TestNotificationsPublishExpiry(t *testing.T) {
	h := newHarness(t)
	var seen []*domain.Notification
	unsubscribe := h.store.Subscribe(func(st State) { seen = append(seen, st.Notification) })

	h.store.Notify("first", domain.SeverityInfo)
	h.store.Notify("second", domain.SeverityInfo)
	st := h.store.State()
	require.NotNil(t, st.Notification)
	assert.Equal(t, "second", st.Notification.Message)

	h.sched.Advance(notify.DefaultTTL)
	assert.Nil(t, h.store.State().Notification)
	require.NotEmpty(t, seen)
	assert.Nil(t, seen[len(seen)-1])

	unsubscribe()
	n := len(seen)
	h.store.Notify("third", domain.SeverityInfo)
	assert.Len(t, seen, n)
}

func TestSubscribersSeeIncreasingVersions(t *testing.T) {
	h := newHarness(t)
	var versions []uint64
	h.store.Subscribe(func(st State) { versions = append(versions, st.Version) })

	h.store.SetProducts([]domain.Product{{ID: "1"}})
	h.store.SetSelectedProduct(&domain.Product{ID: "1"})
	h.store.SetSelectedProduct(nil)

	require.Len(t, versions, 3)
	assert.Less(t, versions[0], versions[1])
	assert.Less(t, versions[1], versions[2])
}

func TestCloseStopsDeferredFullLoad(t *testing.T) {
	h := newHarness(t)
	liteAndFull(h.api)
	h.store.LoadInitialData(bg)
	assert.Equal(t, 1, h.sched.Pending())

	h.store.Close()
	h.sched.Advance(time.Second)
	assert.Zero(t, h.api.Calls("FetchAllProducts"))
}

func TestAdminSessionLoadsOnBoot(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.AuthToken = "token-1" })
	liteAndFull(h.api)
	h.api.Orders = []domain.Order{{ID: "o1", Date: "2026-01-01"}}

	h.store.Boot(bg)
	st := h.store.State()
	assert.True(t, st.IsAdminAuthenticated)
	assert.Len(t, st.Orders, 1)
	assert.Equal(t, 1, st.NewOrdersCount)
}

func railProducts(n int) []domain.Product {
	products := make([]domain.Product, 0, n)
	for i := range n {
		products = append(products, domain.Product{
			ID:           fmt.Sprintf("p%d", i),
			Name:         fmt.Sprintf("item %d", i),
			Price:        float64(100 * (i + 1)),
			IsNewArrival: true,
			IsTrending:   i%2 == 0,
		})
	}
	return products
}

func TestRailWhileUpdatingProducts(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.store.Login(bg, "a", "b"))
	h.store.SetProducts(railProducts(12))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for range 200 {
			items, more := h.store.Rail(catalog.RailNewArrivals)
			assert.Len(t, items, domain.DefaultRailCount)
			assert.True(t, more)
		}
	}()
	go func() {
		defer wg.Done()
		for i := range 200 {
			p := domain.Product{ID: fmt.Sprintf("p%d", i%12), Name: fmt.Sprintf("rev %d", i), IsNewArrival: true}
			assert.NoError(t, h.store.UpdateProduct(bg, p))
		}
	}()
	wg.Wait()

	assert.Len(t, h.store.State().Products, 12)
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.store.Login(bg, "a", "b"))
	products := railProducts(8)
	h.store.SetProducts(products)

	var snapshots int
	unsubscribe := h.store.Subscribe(func(st State) {
		snapshots++
		assert.InDelta(t, domain.CartTotal(st.Cart), st.CartTotal, 0.001)
	})
	defer unsubscribe()

	const rounds = 100
	var wg sync.WaitGroup
	reader := func() {
		defer wg.Done()
		for range rounds {
			h.store.Rail(catalog.RailTrending)
			st := h.store.State()
			assert.InDelta(t, domain.CartTotal(st.Cart), st.CartTotal, 0.001)
			_, ok := h.store.Product("p1")
			assert.True(t, ok)
		}
	}
	writers := []func(i int){
		func(i int) { h.store.AddToCart(bg, products[i%len(products)], 1, "M") },
		func(i int) { h.store.UpdateCartQuantity(bg, products[i%len(products)].ID, "M", i%3) },
		func(i int) {
			p := products[i%len(products)]
			p.Name = fmt.Sprintf("rev %d", i)
			assert.NoError(t, h.store.UpdateProduct(bg, p))
		},
		func(i int) {
			h.store.ReceiveOrder(domain.Order{ID: fmt.Sprintf("live-%d", i%20), Status: domain.StatusPending, Total: 100})
		},
		func(i int) { h.store.Notify(fmt.Sprintf("note %d", i), domain.SeverityInfo) },
		func(i int) {
			p := products[i%len(products)]
			h.store.SetSelectedProduct(&p)
		},
	}

	for range 3 {
		wg.Add(1)
		go reader()
	}
	for _, write := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range rounds {
				write(i)
			}
		}()
	}
	wg.Wait()

	st := h.store.State()
	assert.Len(t, st.Products, len(products))
	assert.InDelta(t, domain.CartTotal(st.Cart), st.CartTotal, 0.001)
	live := 0
	for _, o := range st.Orders {
		if len(o.ID) > 5 && o.ID[:5] == "live-" {
			live++
		}
	}
	assert.Equal(t, 20, live)
	assert.Positive(t, snapshots)
	require.NotNil(t, st.Notification)
	require.NotNil(t, st.SelectedProduct)
}
