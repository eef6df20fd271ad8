package domain

// CartKey identifies a cart line: one line per product and selected size.
type CartKey struct {
	ProductID string
	Size      string
}

// CartLine is a line item. Price is a snapshot taken when the line was added.
type CartLine struct {
	ProductID string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image"`
	Size      string  `json:"size"`
}

func (l CartLine) Key() CartKey { return CartKey{ProductID: l.ProductID, Size: l.Size} }

func (l CartLine) Subtotal() float64 { return l.Price * float64(l.Quantity) }

// CartTotal folds price times quantity over lines.
func CartTotal(lines []CartLine) float64 {
	var total float64
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}
