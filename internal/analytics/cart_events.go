package analytics

import (
	"context"

	"github.com/storefront-poc-v1/server/internal/cart/model"
)

// CartEvents forwards cart signals to the data layer.
type CartEvents struct {
	dl *DataLayer
}

func NewCartEvents(dl *DataLayer) *CartEvents {
	return &CartEvents{dl: dl}
}

func (c *CartEvents) CartOpened(ctx context.Context, state model.CartState) {
	qty := 0
	for _, l := range state.Lines {
		qty += l.Quantity
	}
	c.dl.Push(ctx, "cart_open", map[string]any{
		"cart_lines":    state.Len(),
		"cart_quantity": qty,
	})
}

func (c *CartEvents) CheckoutCompleted(ctx context.Context) {
	c.dl.Push(ctx, "checkout_complete", nil)
}

var _ model.Observer = (*CartEvents)(nil)
