package model

import "context"

// Catalog is the read-only product source the cart resolves ids against.
type Catalog interface {
	// Lookup returns the product for id and whether it exists.
	Lookup(id int) (Product, bool)

	// Products returns every product in catalog order.
	Products() []Product
}

// StateStorage persists the serialised cart under a single key.
type StateStorage interface {
	// Read returns the stored bytes. A missing key must match errx.ErrNotFound.
	Read(ctx context.Context) ([]byte, error)

	// Write fully replaces the stored bytes.
	Write(ctx context.Context, data []byte) error
}

// Observer receives the signals the cart emits to the UI.
type Observer interface {
	// CartOpened fires after a product was added, with the resulting state.
	CartOpened(ctx context.Context, state CartState)

	// CheckoutCompleted fires after checkout cleared the cart.
	CheckoutCompleted(ctx context.Context)
}
