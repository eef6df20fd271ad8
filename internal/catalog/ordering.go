package catalog

import (
	"cmp"
	"slices"

	"github.com/example/storefront-core/internal/domain"
)

// Rail names a promotional product rail on the homepage.
type Rail string

const (
	RailNewArrivals Rail = "new-arrivals"
	RailTrending    Rail = "trending"
)

func (r Rail) Valid() bool { return r == RailNewArrivals || r == RailTrending }

// Includes reports whether p is flagged for the rail.
func (r Rail) Includes(p domain.Product) bool {
	switch r {
	case RailNewArrivals:
		return p.IsNewArrival
	case RailTrending:
		return p.IsTrending
	}
	return false
}

// Hint returns the placement p carries for the rail.
func (r Rail) Hint(p domain.Product) domain.Placement {
	if r == RailTrending {
		return p.TrendingOrder
	}
	return p.NewArrivalOrder
}

// Count picks the homepage count for the rail from settings.
func (r Rail) Count(s domain.Settings) int {
	n := s.HomepageNewArrivalsCount
	if r == RailTrending {
		n = s.HomepageTrendingCount
	}
	if n <= 0 {
		return domain.DefaultRailCount
	}
	return n
}

// Order interleaves pinned items with the flow. Flow items are sorted by id
// descending, which assumes ids grow with creation time. A pinned item lands
// no later than its slot; it may land earlier once the flow runs out. The
// result is a permutation of items.
func Order(items []domain.Product, hint func(domain.Product) domain.Placement) []domain.Product {
	type pin struct {
		p    domain.Product
		slot int
	}
	var pinned []pin
	var flow []domain.Product
	for _, p := range items {
		if slot, ok := hint(p).Slot(); ok {
			pinned = append(pinned, pin{p: p, slot: slot})
			continue
		}
		flow = append(flow, p)
	}
	slices.SortStableFunc(flow, func(a, b domain.Product) int { return cmp.Compare(b.ID, a.ID) })
	slices.SortStableFunc(pinned, func(a, b pin) int { return cmp.Compare(a.slot, b.slot) })

	out := make([]domain.Product, 0, len(items))
	fi := 0
	for pos := 1; len(out) < len(items); pos++ {
		switch {
		case len(pinned) > 0 && pinned[0].slot <= pos:
			out = append(out, pinned[0].p)
			pinned = pinned[1:]
		case fi < len(flow):
			out = append(out, flow[fi])
			fi++
		default:
			out = append(out, pinned[0].p)
			pinned = pinned[1:]
		}
	}
	return out
}

// BuildRail filters products for the rail, orders them and keeps the first
// count entries. A non-positive count means DefaultRailCount.
func BuildRail(products []domain.Product, rail Rail, count int) []domain.Product {
	if count <= 0 {
		count = domain.DefaultRailCount
	}
	var members []domain.Product
	for _, p := range products {
		if rail.Includes(p) {
			members = append(members, p)
		}
	}
	ordered := Order(members, rail.Hint)
	if len(ordered) > count {
		ordered = ordered[:count]
	}
	return ordered
}
