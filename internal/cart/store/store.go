package store

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/storefront-poc-v1/server/internal/cart/model"
	errx "github.com/storefront-poc-v1/server/internal/core/error"
	logx "github.com/storefront-poc-v1/server/pkg/logger"
)

// Store owns one shopper's cart for the lifetime of a session.
//
// Every operation is total: unknown products and corrupt persisted data
// degrade to no-ops or an empty cart, and storage write failures are logged
// but never returned. The in-memory state stays authoritative after a failed
// write. Callers only ever receive copies of the state.
type Store struct {
	mu        sync.Mutex
	catalog   model.Catalog
	storage   model.StateStorage
	observers []model.Observer
	state     model.CartState
}

type Option func(*Store)

// WithObserver registers an observer for the cart-opened and checkout-completed signals.
func WithObserver(o model.Observer) Option {
	return func(s *Store) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// New returns a store with an empty cart. Call Load to rehydrate persisted state.
func New(catalog model.Catalog, storage model.StateStorage, opts ...Option) *Store {
	s := &Store{
		catalog: catalog,
		storage: storage,
		state:   model.CartState{Lines: []model.CartLine{}},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory cart with the persisted one. Missing, undecodable
// or invalid data yields an empty cart; lines for products the catalog no
// longer carries are dropped.
func (s *Store) Load(ctx context.Context) model.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = model.CartState{Lines: []model.CartLine{}}

	b, err := s.storage.Read(ctx)
	if err != nil {
		if errx.NotFound(err) {
			logx.Debug().Msg("no persisted cart, starting empty")
		} else {
			logx.Warn().Err(err).Msg("failed to read persisted cart, starting empty")
		}
		return s.state.Clone()
	}

	loaded, err := decodeState(b)
	if err != nil {
		logx.Warn().Err(err).Int("bytes", len(b)).Msg("persisted cart is invalid, starting empty")
		return s.state.Clone()
	}

	for _, l := range loaded.Lines {
		if _, ok := s.catalog.Lookup(l.ProductID); !ok {
			logx.Debug().Int("product_id", l.ProductID).Msg("dropping persisted line for unknown product")
			continue
		}
		s.state.Lines = append(s.state.Lines, l)
	}
	return s.state.Clone()
}

// AddOrIncrement adds one unit of productID, appending a new line if needed,
// and signals cart-opened. Unknown products, and lines already at
// model.MaxQuantity, leave the cart untouched.
func (s *Store) AddOrIncrement(ctx context.Context, productID int) model.CartState {
	s.mu.Lock()
	state, added := s.addLocked(ctx, productID)
	s.mu.Unlock()

	if added {
		s.notifyOpened(ctx, state)
	}
	return state
}

// ChangeQuantity adds delta to the line for productID and removes the line when
// the result drops to zero or below. A delta pushing the line past
// model.MaxQuantity is ignored. For a product not in the cart a positive
// delta behaves like AddOrIncrement; anything else is a no-op.
func (s *Store) ChangeQuantity(ctx context.Context, productID, delta int) model.CartState {
	s.mu.Lock()

	i := s.state.Index(productID)
	if i < 0 {
		if delta <= 0 {
			state := s.state.Clone()
			s.mu.Unlock()
			return state
		}
		state, added := s.addLocked(ctx, productID)
		s.mu.Unlock()
		if added {
			s.notifyOpened(ctx, state)
		}
		return state
	}
	defer s.mu.Unlock()

	current := s.state.Lines[i].Quantity
	if delta == 0 {
		return s.state.Clone()
	}
	// compared by subtraction so a huge delta cannot wrap
	if delta > model.MaxQuantity-current {
		logx.Debug().Int("product_id", productID).Int("delta", delta).Msg("ignoring change above max quantity")
		return s.state.Clone()
	}

	qty := current + delta
	if qty <= 0 {
		s.removeAtLocked(i)
	} else {
		s.state.Lines[i].Quantity = qty
	}
	s.persistLocked(ctx)
	return s.state.Clone()
}

// Remove drops the line for productID regardless of its quantity.
func (s *Store) Remove(ctx context.Context, productID int) model.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.state.Index(productID)
	if i < 0 {
		return s.state.Clone()
	}
	s.removeAtLocked(i)
	s.persistLocked(ctx)
	return s.state.Clone()
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) model.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = model.CartState{Lines: []model.CartLine{}}
	s.persistLocked(ctx)
	return s.state.Clone()
}

// CompleteCheckout clears the cart and signals checkout-completed.
func (s *Store) CompleteCheckout(ctx context.Context) model.CartState {
	state := s.Clear(ctx)
	for _, o := range s.observerList() {
		o.CheckoutCompleted(ctx)
	}
	return state
}

// Persist writes the current state again and reports the storage error, if any.
func (s *Store) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := encodeState(s.state, s.catalog)
	if err != nil {
		return err
	}
	return s.storage.Write(ctx, b)
}

// State returns a copy of the cart lines.
func (s *Store) State() model.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Snapshot returns the cart lines joined with their catalog products.
func (s *Store) Snapshot() []model.SnapshotLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.SnapshotLine, 0, len(s.state.Lines))
	for _, l := range s.state.Lines {
		p, ok := s.catalog.Lookup(l.ProductID)
		if !ok {
			continue
		}
		out = append(out, model.SnapshotLine{
			Product:   p,
			Quantity:  l.Quantity,
			LineTotal: p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))),
		})
	}
	return out
}

// TotalQuantity returns the sum of all line quantities.
func (s *Store) TotalQuantity() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, l := range s.state.Lines {
		total += l.Quantity
	}
	return total
}

// RawTotalPrice returns the unrounded sum of quantity times catalog price.
func (s *Store) RawTotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rawTotalLocked()
}

// TotalPrice returns the cart total rounded to two decimal places.
func (s *Store) TotalPrice() decimal.Decimal {
	return s.RawTotalPrice().Round(2)
}

// LineQuantity returns the quantity for productID, or 0 when absent.
func (s *Store) LineQuantity(productID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.state.Index(productID); i >= 0 {
		return s.state.Lines[i].Quantity
	}
	return 0
}

// ====================== Helpers (callers hold s.mu) ======================

func (s *Store) addLocked(ctx context.Context, productID int) (model.CartState, bool) {
	if _, ok := s.catalog.Lookup(productID); !ok {
		logx.Debug().Int("product_id", productID).Msg("ignoring add for unknown product")
		return s.state.Clone(), false
	}

	if i := s.state.Index(productID); i >= 0 {
		if s.state.Lines[i].Quantity >= model.MaxQuantity {
			logx.Debug().Int("product_id", productID).Msg("ignoring add above max quantity")
			return s.state.Clone(), false
		}
		s.state.Lines[i].Quantity++
	} else {
		s.state.Lines = append(s.state.Lines, model.CartLine{ProductID: productID, Quantity: 1})
	}
	s.persistLocked(ctx)
	return s.state.Clone(), true
}

func (s *Store) removeAtLocked(i int) {
	s.state.Lines = append(s.state.Lines[:i], s.state.Lines[i+1:]...)
}

func (s *Store) rawTotalLocked() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.state.Lines {
		p, ok := s.catalog.Lookup(l.ProductID)
		if !ok {
			continue
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// persistLocked overwrites storage with the current state. Failures are logged
// only; memory remains the source of truth for the session.
func (s *Store) persistLocked(ctx context.Context) {
	b, err := encodeState(s.state, s.catalog)
	if err != nil {
		logx.Warn().Err(err).Msg("failed to encode cart")
		return
	}
	if err := s.storage.Write(ctx, b); err != nil {
		logx.Warn().Err(err).Int("lines", len(s.state.Lines)).Msg("failed to persist cart, keeping in-memory state")
	}
}

func (s *Store) observerList() []model.Observer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Observer, len(s.observers))
	copy(out, s.observers)
	return out
}

func (s *Store) notifyOpened(ctx context.Context, state model.CartState) {
	for _, o := range s.observerList() {
		o.CartOpened(ctx, state.Clone())
	}
}
