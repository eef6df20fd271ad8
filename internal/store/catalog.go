package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/example/storefront-core/internal/catalog"
	"github.com/example/storefront-core/internal/domain"
	"github.com/example/storefront-core/internal/freshness"
)

// Hydrate restores the persisted slice and the orders watermark. Storage
// errors are returned; malformed data silently falls back to defaults.
func (s *Store) Hydrate(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	s.mu.Lock()
	defaults := s.sliceLocked()
	s.mu.Unlock()

	restored, err := s.persist.Load(ctx, defaults)
	wm, wmErr := s.persist.LoadWatermark(ctx)
	s.update(func() bool {
		if restored.Products != nil {
			s.products = restored.Products
		}
		s.settings = restored.Settings
		s.cart.Restore(restored.Cart)
		s.tracker = freshness.New(wm)
		s.tracker.Recount(s.orders)
		return false
	})
	return errors.Join(err, wmErr)
}

// Boot hydrates, runs the lite catalog phase and schedules the full phase.
func (s *Store) Boot(ctx context.Context) {
	if err := s.Hydrate(ctx); err != nil {
		s.log.Warn("hydrate failed, continuing with defaults", "err", err)
	}
	s.LoadInitialData(ctx)
}

// LoadInitialData fetches the lite catalog, falling back to the sample
// catalog on failure, then loads admin data when a session exists. The full
// catalog fetch is always scheduled afterwards.
func (s *Store) LoadInitialData(ctx context.Context) {
	res := s.recon.LoadLite(ctx)
	var admin bool
	s.update(func() bool {
		switch {
		case !s.fullLoaded:
			s.products = res.Products
		case !res.Fallback:
			// The full catalog landed first; it still wins every conflict.
			s.products = catalog.Merge(res.Products, s.products)
		}
		if res.Settings != nil {
			s.settings = res.Settings.Clone()
		}
		s.fullLoaded = s.fullLoaded || res.FullLoaded
		s.loading = false
		admin = res.Err == nil && s.token != ""
		return true
	})
	if admin {
		if err := s.RefreshAdminData(ctx); err != nil {
			s.log.Warn("admin data not loaded", "err", err)
		}
	}
	s.scheduleFullLoad()
}

func (s *Store) scheduleFullLoad() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil || s.fullTimer != nil || s.fullLoaded {
		return
	}
	s.wg.Add(1)
	s.fullTimer = s.sched.AfterFunc(s.delay, func() {
		defer s.wg.Done()
		s.mu.Lock()
		s.fullTimer = nil
		s.mu.Unlock()
		if err := s.EnsureAllProductsLoaded(s.ctx); err != nil {
			s.log.Warn("full catalog deferred", "err", err)
		}
	})
}

// EnsureAllProductsLoaded fetches the full catalog and merges it into the
// held products unless that already happened. Failure leaves state alone so
// a later call can retry.
func (s *Store) EnsureAllProductsLoaded(ctx context.Context) error {
	s.mu.Lock()
	loaded := s.fullLoaded
	s.mu.Unlock()
	if loaded {
		return nil
	}
	full, err := s.recon.FetchFull(ctx)
	if err != nil {
		return fmt.Errorf("load all products: %w", err)
	}
	s.update(func() bool {
		s.products = catalog.Merge(s.products, full)
		s.fullLoaded = true
		return true
	})
	return nil
}

func (s *Store) SetProducts(products []domain.Product) {
	s.update(func() bool {
		s.products = append([]domain.Product{}, products...)
		return true
	})
}

// SetSelectedProduct sets or, with nil, clears the product being viewed.
func (s *Store) SetSelectedProduct(p *domain.Product) {
	s.update(func() bool {
		if p == nil {
			s.selected = nil
			return false
		}
		sel := p.Clone()
		s.selected = &sel
		return false
	})
}

func (s *Store) Product(id string) (domain.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.productLocked(id)
}

// Rail returns the homepage slice of a rail and whether more items exist.
func (s *Store) Rail(r catalog.Rail) ([]domain.Product, bool) {
	s.mu.Lock()
	products, count := slices.Clone(s.products), r.Count(s.settings)
	s.mu.Unlock()
	all := catalog.BuildRail(products, r, len(products)+1)
	if len(all) > count {
		return all[:count], true
	}
	return all, false
}

func (s *Store) AddProduct(ctx context.Context, p domain.Product) error {
	token, err := s.adminToken()
	if err != nil {
		return s.fail(err, "Could not add product.")
	}
	created, err := s.api.CreateProduct(ctx, p, token)
	if err != nil {
		return s.fail(err, "Could not add product.")
	}
	s.update(func() bool {
		s.products = append([]domain.Product{created}, s.products...)
		s.notes.Notify("Product added successfully!", domain.SeveritySuccess)
		return true
	})
	return nil
}

func (s *Store) UpdateProduct(ctx context.Context, p domain.Product) error {
	token, err := s.adminToken()
	if err != nil {
		return s.fail(err, "Could not update product.")
	}
	saved, err := s.api.UpdateProduct(ctx, p, token)
	if err != nil {
		return s.fail(err, "Could not update product.")
	}
	s.update(func() bool {
		for i := range s.products {
			if s.products[i].ID == saved.ID {
				s.products[i] = saved
			}
		}
		s.notes.Notify("Product updated successfully!", domain.SeveritySuccess)
		return true
	})
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	token, err := s.adminToken()
	if err != nil {
		return s.fail(err, "Could not delete product.")
	}
	if err := s.api.DeleteProduct(ctx, id, token); err != nil {
		return s.fail(err, "Could not delete product.")
	}
	s.update(func() bool {
		kept := s.products[:0:0]
		for _, p := range s.products {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		s.products = kept
		s.notes.Notify("Product deleted successfully.", domain.SeveritySuccess)
		return true
	})
	return nil
}

// LoadAdminProducts loads one page of the admin listing. Without a session
// it does nothing.
func (s *Store) LoadAdminProducts(ctx context.Context, page int, search string) error {
	token, err := s.adminToken()
	if err != nil {
		return nil
	}
	res, err := s.api.FetchAdminProducts(ctx, page, search, token)
	if err != nil {
		return s.fail(err, "Could not load products for admin panel.")
	}
	s.update(func() bool {
		s.adminProducts = res.Products
		s.pagination = Pagination{Page: res.Page, Pages: res.Pages, Total: res.Total}
		return false
	})
	return nil
}
