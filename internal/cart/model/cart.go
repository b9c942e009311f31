package model

import "github.com/shopspring/decimal"

// MaxQuantity caps a single line. Changes that would exceed it are ignored.
const MaxQuantity = 999_999

// CartLine pairs one product with a positive quantity.
type CartLine struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

// CartState is the ordered list of lines, in first-add order.
// Invariants: one line per ProductID, every Quantity in [1, MaxQuantity].
type CartState struct {
	Lines []CartLine `json:"lines"`
}

// Clone returns a deep copy so callers never share the store's backing array.
func (s CartState) Clone() CartState {
	lines := make([]CartLine, len(s.Lines))
	copy(lines, s.Lines)
	return CartState{Lines: lines}
}

// Len returns the number of distinct products in the cart.
func (s CartState) Len() int {
	return len(s.Lines)
}

// IsEmpty reports whether the cart has no lines.
func (s CartState) IsEmpty() bool {
	return len(s.Lines) == 0
}

// Index returns the position of the line for productID, or -1.
func (s CartState) Index(productID int) int {
	for i, l := range s.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// SnapshotLine is a cart line joined with the resolved product, for rendering.
type SnapshotLine struct {
	Product   Product         `json:"product"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// PersistedLine is the stored layout of one line: a denormalised product copy plus quantity.
type PersistedLine struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	BaseImg string  `json:"baseImg"`
	Qty     int     `json:"qty"`
}
