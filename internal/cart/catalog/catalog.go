package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/storefront-poc-v1/server/internal/cart/model"
)

// Static is an immutable, ordered catalog indexed by product id.
type Static struct {
	products []model.Product
	byID     map[int]int
}

// New validates products and builds a catalog. Ids must be positive and unique,
// prices non-negative.
func New(products []model.Product) (*Static, error) {
	c := &Static{
		products: make([]model.Product, 0, len(products)),
		byID:     make(map[int]int, len(products)),
	}
	for i, p := range products {
		if p.ID <= 0 {
			return nil, fmt.Errorf("product at index %d: id must be positive, got %d", i, p.ID)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("product at index %d: duplicate id %d", i, p.ID)
		}
		if p.Price.IsNegative() {
			return nil, fmt.Errorf("product %d: price must not be negative, got %s", p.ID, p.Price)
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c, nil
}

// MustNew is New that panics, for package-level defaults.
func MustNew(products []model.Product) *Static {
	c, err := New(products)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Static) Lookup(id int) (model.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Product{}, false
	}
	return c.products[i], true
}

func (c *Static) Products() []model.Product {
	out := make([]model.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Default returns the built-in demo catalog.
func Default() *Static {
	return MustNew(DefaultProducts)
}

var DefaultProducts = []model.Product{
	{ID: 1, Name: "Canvas Tote Bag", Price: decimal.RequireFromString("29.99"), BaseImg: "img/tote.jpg"},
	{ID: 2, Name: "Ceramic Mug", Price: decimal.RequireFromString("19.99"), BaseImg: "img/mug.jpg"},
	{ID: 3, Name: "Desk Notebook", Price: decimal.RequireFromString("12.50"), BaseImg: "img/notebook.jpg"},
	{ID: 4, Name: "Enamel Pin Set", Price: decimal.RequireFromString("9.00"), BaseImg: "img/pins.jpg"},
	{ID: 5, Name: "Sticker Pack", Price: decimal.RequireFromString("4.99"), BaseImg: "img/stickers.jpg"},
	{ID: 6, Name: "Logo Hoodie", Price: decimal.RequireFromString("54.00"), BaseImg: "img/hoodie.jpg"},
}

var _ model.Catalog = (*Static)(nil)
