package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// PinThreshold is the first hint value that no longer fixes a rail slot.
const PinThreshold = 1000

// Placement is an operator hint for a product's slot on a promotional rail.
// The zero value is unpinned.
type Placement struct {
	slot   int
	pinned bool
}

// Pinned returns a placement for the given 1-based slot. Hints of 0 or at or
// above PinThreshold carry no slot and yield an unpinned placement.
func Pinned(slot int) Placement {
	if slot == 0 || slot >= PinThreshold {
		return Placement{}
	}
	return Placement{slot: slot, pinned: true}
}

func Unpinned() Placement { return Placement{} }

// Slot reports the requested slot and whether the placement is pinned.
func (p Placement) Slot() (int, bool) { return p.slot, p.pinned }

func (p Placement) IsPinned() bool { return p.pinned }

func (p Placement) MarshalJSON() ([]byte, error) {
	if !p.pinned {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(p.slot)), nil
}

// UnmarshalJSON accepts numbers, numeric strings and null. Anything else is
// treated as unpinned so one odd hint does not reject the whole product.
func (p *Placement) UnmarshalJSON(data []byte) error {
	*p = Placement{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		var s string
		if json.Unmarshal(data, &s) != nil {
			return nil
		}
		if n, err = strconv.ParseFloat(s, 64); err != nil {
			return nil
		}
	}
	*p = placementFromHint(n)
	return nil
}

// placementFromHint maps a fractional hint to the first slot it does not
// precede: 0.5 lands on slot 1 and 1.5 on slot 2.
func placementFromHint(n float64) Placement {
	switch {
	case math.IsNaN(n), n == 0, n >= PinThreshold:
		return Placement{}
	case n < -PinThreshold:
		return Pinned(-PinThreshold)
	case n < 0:
		return Pinned(int(math.Floor(n)))
	}
	return Pinned(min(int(math.Ceil(n)), PinThreshold-1))
}

// Product is a catalog entry. Images[0] is the thumbnail.
type Product struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	Price           float64   `json:"price"`
	Description     string    `json:"description"`
	Fabric          string    `json:"fabric"`
	Colors          []string  `json:"colors"`
	Sizes           []string  `json:"sizes"`
	IsNewArrival    bool      `json:"isNewArrival"`
	NewArrivalOrder Placement `json:"newArrivalDisplayOrder"`
	IsTrending      bool      `json:"isTrending"`
	TrendingOrder   Placement `json:"trendingDisplayOrder"`
	OnSale          bool      `json:"onSale"`
	Images          []string  `json:"images"`
	DisplayOrder    int       `json:"displayOrder,omitempty"`
}

// Thumbnail returns the first image or an empty string.
func (p Product) Thumbnail() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Clone returns a copy that shares no slices with p.
func (p Product) Clone() Product {
	out := p
	out.Colors = cloneSlice(p.Colors)
	out.Sizes = cloneSlice(p.Sizes)
	out.Images = cloneSlice(p.Images)
	return out
}

// HomeData is the lite payload used for the first render.
type HomeData struct {
	Settings *Settings `json:"settings"`
	Products []Product `json:"products"`
}

// ProductPage is one page of the admin product listing.
type ProductPage struct {
	Products []Product `json:"products"`
	Page     int       `json:"page"`
	Pages    int       `json:"pages"`
	Total    int       `json:"total"`
}
