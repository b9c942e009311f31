package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-poc-v1/server/internal/cart/catalog"
	"github.com/storefront-poc-v1/server/internal/cart/model"
	"github.com/storefront-poc-v1/server/internal/cart/repo"
	"github.com/storefront-poc-v1/server/internal/core"
	logx "github.com/storefront-poc-v1/server/pkg/logger"
)

func TestMain(m *testing.M) {
	logx.Init(logx.LoggerOpts{Environment: core.Testing})
	os.Exit(m.Run())
}

type recordingObserver struct {
	mu        sync.Mutex
	opened    []model.CartState
	checkouts int
	onOpen    func(model.CartState)
}

func (r *recordingObserver) CartOpened(_ context.Context, state model.CartState) {
	r.mu.Lock()
	r.opened = append(r.opened, state)
	cb := r.onOpen
	r.mu.Unlock()
	if cb != nil {
		cb(state)
	}
}

func (r *recordingObserver) CheckoutCompleted(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkouts++
}

func (r *recordingObserver) openedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.opened)
}

type failingStorage struct {
	readErr  error
	writeErr error
	writes   int
}

func (f *failingStorage) Read(context.Context) ([]byte, error) { return nil, f.readErr }

func (f *failingStorage) Write(context.Context, []byte) error {
	f.writes++
	return f.writeErr
}

func newTestStore(t *testing.T, opts ...Option) (*Store, *repo.MemoryStorage) {
	t.Helper()
	storage := repo.NewMemoryStorage()
	s := New(catalog.Default(), storage, opts...)
	s.Load(context.Background())
	return s, storage
}

// TestAddOrIncrement_QuantityEqualsCallCount verifies repeated adds accumulate per id and in total.
func TestAddOrIncrement_QuantityEqualsCallCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		calls map[int]int
	}{
		{name: "single_id_once", calls: map[int]int{1: 1}},
		{name: "single_id_many", calls: map[int]int{3: 7}},
		{name: "several_ids", calls: map[int]int{1: 2, 2: 5, 6: 1}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, _ := newTestStore(t)
			ctx := context.Background()
			want := 0
			for id, n := range tt.calls {
				for i := 0; i < n; i++ {
					s.AddOrIncrement(ctx, id)
				}
				want += n
			}

			for id, n := range tt.calls {
				assert.Equal(t, n, s.LineQuantity(id), "product %d", id)
			}
			assert.Equal(t, want, s.TotalQuantity())
			assert.Len(t, s.State().Lines, len(tt.calls))
		})
	}
}

// TestAddOrIncrement_AppendsInFirstAddOrder verifies lines keep first-add order.
func TestAddOrIncrement_AppendsInFirstAddOrder(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()
	s.AddOrIncrement(ctx, 4)
	s.AddOrIncrement(ctx, 2)
	s.AddOrIncrement(ctx, 4)
	state := s.AddOrIncrement(ctx, 1)

	assert.Equal(t, []model.CartLine{
		{ProductID: 4, Quantity: 2},
		{ProductID: 2, Quantity: 1},
		{ProductID: 1, Quantity: 1},
	}, state.Lines)
}

// TestAddOrIncrement_UnknownProduct verifies unknown ids change nothing, write nothing and signal nothing.
func TestAddOrIncrement_UnknownProduct(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	s, storage := newTestStore(t, WithObserver(obs))

	state := s.AddOrIncrement(context.Background(), 999)

	assert.True(t, state.IsEmpty())
	assert.Equal(t, 0, storage.Writes())
	assert.Equal(t, 0, obs.openedCount())
}

// TestAddOrIncrement_SignalsCartOpened verifies every successful add emits cart-opened with the new state.
func TestAddOrIncrement_SignalsCartOpened(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	s, _ := newTestStore(t, WithObserver(obs))
	ctx := context.Background()

	s.AddOrIncrement(ctx, 2)
	s.AddOrIncrement(ctx, 2)

	require.Equal(t, 2, obs.openedCount())
	assert.Equal(t, 2, obs.opened[1].Lines[0].Quantity)
}

// TestObserver_CanReadStoreDuringSignal verifies signals fire outside the store lock.
func TestObserver_CanReadStoreDuringSignal(t *testing.T) {
	t.Parallel()

	var s *Store
	seen := 0
	obs := &recordingObserver{onOpen: func(model.CartState) { seen = s.TotalQuantity() }}
	s, _ = newTestStore(t, WithObserver(obs))

	s.AddOrIncrement(context.Background(), 5)
	assert.Equal(t, 1, seen)
}

// TestScenario_AddTwiceThenRemoveBoth follows add, add, change(-2) on one product.
func TestScenario_AddTwiceThenRemoveBoth(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()

	s.AddOrIncrement(ctx, 3)
	assert.Equal(t, 1, s.TotalQuantity())
	assert.Equal(t, 1, s.LineQuantity(3))

	s.AddOrIncrement(ctx, 3)
	assert.Equal(t, 2, s.LineQuantity(3))

	state := s.ChangeQuantity(ctx, 3, -2)
	assert.Equal(t, 0, s.LineQuantity(3))
	assert.Equal(t, -1, state.Index(3))
	assert.Empty(t, s.Snapshot())
}

// TestChangeQuantity_NetZeroRemovesLine verifies +d then -d leaves no zero-quantity line behind.
func TestChangeQuantity_NetZeroRemovesLine(t *testing.T) {
	t.Parallel()

	for _, delta := range []int{1, 2, 5} {
		delta := delta
		t.Run(fmt.Sprintf("delta_%d", delta), func(t *testing.T) {
			t.Parallel()

			s, _ := newTestStore(t)
			ctx := context.Background()
			s.ChangeQuantity(ctx, 1, delta)
			// absent + positive delta behaves like a single add
			require.Equal(t, 1, s.LineQuantity(1))

			s.ChangeQuantity(ctx, 1, delta-1)
			s.ChangeQuantity(ctx, 1, -delta)

			assert.Equal(t, -1, s.State().Index(1))
			assert.Equal(t, 0, s.TotalQuantity())
		})
	}
}

// TestChangeQuantity covers the branches for present and absent lines.
func TestChangeQuantity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		seed        []int
		productID   int
		delta       int
		wantQty     int
		wantWrites  int
		wantSignals int
	}{
		{name: "absent_positive_adds_one", productID: 2, delta: 3, wantQty: 1, wantWrites: 1, wantSignals: 1},
		{name: "absent_negative_noop", productID: 2, delta: -1, wantQty: 0},
		{name: "absent_zero_noop", productID: 2, delta: 0, wantQty: 0},
		{name: "absent_unknown_product_noop", productID: 42, delta: 1, wantQty: 0},
		{name: "present_increment", seed: []int{2}, productID: 2, delta: 1, wantQty: 2, wantWrites: 2, wantSignals: 1},
		{name: "present_large_delta", seed: []int{2}, productID: 2, delta: 9, wantQty: 10, wantWrites: 2, wantSignals: 1},
		{name: "present_to_zero_removes", seed: []int{2}, productID: 2, delta: -1, wantQty: 0, wantWrites: 2, wantSignals: 1},
		{name: "present_below_zero_removes", seed: []int{2, 2}, productID: 2, delta: -10, wantQty: 0, wantWrites: 3, wantSignals: 2},
		{name: "present_zero_delta_noop", seed: []int{2}, productID: 2, delta: 0, wantQty: 1, wantWrites: 1, wantSignals: 1},
		{name: "present_max_int_delta_noop", seed: []int{2, 2}, productID: 2, delta: math.MaxInt, wantQty: 2, wantWrites: 2, wantSignals: 2},
		{name: "present_min_int_delta_removes", seed: []int{2}, productID: 2, delta: math.MinInt, wantQty: 0, wantWrites: 2, wantSignals: 1},
		{name: "present_above_cap_noop", seed: []int{2}, productID: 2, delta: model.MaxQuantity, wantQty: 1, wantWrites: 1, wantSignals: 1},
		{name: "present_up_to_cap", seed: []int{2}, productID: 2, delta: model.MaxQuantity - 1, wantQty: model.MaxQuantity, wantWrites: 2, wantSignals: 1},
		{name: "absent_max_int_adds_one", productID: 2, delta: math.MaxInt, wantQty: 1, wantWrites: 1, wantSignals: 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			obs := &recordingObserver{}
			s, storage := newTestStore(t, WithObserver(obs))
			ctx := context.Background()
			for _, id := range tt.seed {
				s.AddOrIncrement(ctx, id)
			}

			s.ChangeQuantity(ctx, tt.productID, tt.delta)

			assert.Equal(t, tt.wantQty, s.LineQuantity(tt.productID))
			assert.Equal(t, tt.wantWrites, storage.Writes())
			assert.Equal(t, tt.wantSignals, obs.openedCount())
			for _, l := range s.State().Lines {
				assert.Positive(t, l.Quantity)
			}
		})
	}
}

// TestQuantityCap verifies a line at the cap neither grows nor wraps, and totals stay positive.
func TestQuantityCap(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	s, storage := newTestStore(t, WithObserver(obs))
	ctx := context.Background()

	s.AddOrIncrement(ctx, 1)
	s.ChangeQuantity(ctx, 1, model.MaxQuantity-1)
	require.Equal(t, model.MaxQuantity, s.LineQuantity(1))
	writes := storage.Writes()

	s.AddOrIncrement(ctx, 1)
	s.ChangeQuantity(ctx, 1, 1)
	s.Dispatch(ctx, Action{Kind: ActionIncrement, ProductID: 1})

	assert.Equal(t, model.MaxQuantity, s.LineQuantity(1))
	assert.Equal(t, model.MaxQuantity, s.TotalQuantity())
	assert.Equal(t, writes, storage.Writes())
	assert.Equal(t, 1, obs.openedCount())

	s.ChangeQuantity(ctx, 1, -1)
	assert.Equal(t, model.MaxQuantity-1, s.LineQuantity(1))
}

// TestRemove verifies remove drops a line of any quantity and ignores absent ids.
func TestRemove(t *testing.T) {
	t.Parallel()

	s, storage := newTestStore(t)
	ctx := context.Background()
	s.AddOrIncrement(ctx, 1)
	s.AddOrIncrement(ctx, 1)
	s.AddOrIncrement(ctx, 2)
	before := s.State()
	writes := storage.Writes()

	after := s.Remove(ctx, 5)
	assert.Equal(t, before, after)
	assert.Equal(t, writes, storage.Writes())

	after = s.Remove(ctx, 1)
	assert.Equal(t, []model.CartLine{{ProductID: 2, Quantity: 1}}, after.Lines)
	assert.Equal(t, writes+1, storage.Writes())
}

// TestClear_ThenReloadIsEmpty simulates a page reload after clearing the cart.
func TestClear_ThenReloadIsEmpty(t *testing.T) {
	t.Parallel()

	s, storage := newTestStore(t)
	ctx := context.Background()
	s.AddOrIncrement(ctx, 1)
	s.AddOrIncrement(ctx, 6)

	s.Clear(ctx)

	reloaded := New(catalog.Default(), storage)
	state := reloaded.Load(ctx)
	assert.True(t, state.IsEmpty())
	assert.Equal(t, 0, reloaded.TotalQuantity())
}

// TestLoad_RestoresPersistedCart verifies a second store sees the first one's lines in order.
func TestLoad_RestoresPersistedCart(t *testing.T) {
	t.Parallel()

	s, storage := newTestStore(t)
	ctx := context.Background()
	s.AddOrIncrement(ctx, 6)
	s.AddOrIncrement(ctx, 1)
	s.AddOrIncrement(ctx, 6)

	reloaded := New(catalog.Default(), storage)
	state := reloaded.Load(ctx)

	assert.Equal(t, s.State(), state)
	assert.Equal(t, 2, reloaded.LineQuantity(6))
}

// TestLoad_InvalidData verifies every malformed document falls back to an empty cart.
func TestLoad_InvalidData(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		want []model.CartLine
	}{
		{name: "garbage", data: "not json", want: []model.CartLine{}},
		{name: "object_not_array", data: `{"id":1,"qty":1}`, want: []model.CartLine{}},
		{name: "zero_qty", data: `[{"id":1,"qty":0}]`, want: []model.CartLine{}},
		{name: "negative_id", data: `[{"id":-1,"qty":1}]`, want: []model.CartLine{}},
		{name: "qty_above_cap", data: `[{"id":1,"qty":1000000}]`, want: []model.CartLine{}},
		{name: "qty_near_max_int", data: `[{"id":1,"qty":9223372036854775807},{"id":2,"qty":9223372036854775807}]`, want: []model.CartLine{}},
		{name: "qty_at_cap", data: `[{"id":1,"qty":999999}]`, want: []model.CartLine{{ProductID: 1, Quantity: model.MaxQuantity}}},
		{name: "fractional_qty", data: `[{"id":1,"qty":1.5}]`, want: []model.CartLine{}},
		{name: "duplicate_id", data: `[{"id":1,"qty":1},{"id":1,"qty":2}]`, want: []model.CartLine{}},
		{name: "null", data: `null`, want: []model.CartLine{}},
		{name: "unknown_product_dropped", data: `[{"id":77,"qty":1},{"id":2,"qty":3}]`, want: []model.CartLine{{ProductID: 2, Quantity: 3}}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			storage := repo.NewMemoryStorage()
			require.NoError(t, storage.Write(context.Background(), []byte(tt.data)))

			s := New(catalog.Default(), storage)
			state := s.Load(context.Background())
			assert.Equal(t, tt.want, state.Lines)
		})
	}
}

// TestLoad_ReadError verifies a storage read failure yields an empty cart.
func TestLoad_ReadError(t *testing.T) {
	t.Parallel()

	s := New(catalog.Default(), &failingStorage{readErr: errors.New("boom")})
	state := s.Load(context.Background())
	assert.True(t, state.IsEmpty())
}

// TestWriteFailure_KeepsMemoryState verifies a failed write is swallowed and memory stays authoritative.
func TestWriteFailure_KeepsMemoryState(t *testing.T) {
	t.Parallel()

	storage := &failingStorage{writeErr: errors.New("quota exceeded")}
	s := New(catalog.Default(), storage)
	ctx := context.Background()

	s.AddOrIncrement(ctx, 1)
	s.AddOrIncrement(ctx, 1)

	assert.Equal(t, 2, s.LineQuantity(1))
	assert.Equal(t, 2, storage.writes)
	assert.Error(t, s.Persist(ctx))
}

// TestPersist_Idempotent verifies persisting twice without a mutation stores identical bytes.
func TestPersist_Idempotent(t *testing.T) {
	t.Parallel()

	s, storage := newTestStore(t)
	ctx := context.Background()
	s.AddOrIncrement(ctx, 1)
	s.AddOrIncrement(ctx, 3)

	require.NoError(t, s.Persist(ctx))
	first, err := storage.Read(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Persist(ctx))
	second, err := storage.Read(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// TestPersistedLayout verifies the stored document is the denormalised product snapshot array.
func TestPersistedLayout(t *testing.T) {
	t.Parallel()

	s, storage := newTestStore(t)
	ctx := context.Background()
	s.AddOrIncrement(ctx, 1)
	s.AddOrIncrement(ctx, 1)
	s.AddOrIncrement(ctx, 2)

	b, err := storage.Read(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id":1,"name":"Canvas Tote Bag","price":29.99,"baseImg":"img/tote.jpg","qty":2},
		{"id":2,"name":"Ceramic Mug","price":19.99,"baseImg":"img/mug.jpg","qty":1}
	]`, string(b))

	s.Clear(ctx)
	b, err = storage.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

// TestTotalPrice verifies totals are computed from catalog prices and rounded to cents.
func TestTotalPrice(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()
	assert.True(t, s.TotalPrice().Equal(decimal.Zero))

	s.AddOrIncrement(ctx, 1)
	s.AddOrIncrement(ctx, 1)
	s.AddOrIncrement(ctx, 2)

	assert.Equal(t, "79.97", s.TotalPrice().StringFixed(2))
	assert.True(t, s.RawTotalPrice().Equal(decimal.RequireFromString("79.97")))
}

// TestTotalPrice_RoundsRawSum verifies rounding applies to the sum, not each line.
func TestTotalPrice_RoundsRawSum(t *testing.T) {
	t.Parallel()

	cat, err := catalog.New([]model.Product{
		{ID: 1, Name: "third", Price: decimal.RequireFromString("0.333")},
	})
	require.NoError(t, err)
	s := New(cat, repo.NewMemoryStorage())
	ctx := context.Background()
	s.AddOrIncrement(ctx, 1)
	s.AddOrIncrement(ctx, 1)
	s.AddOrIncrement(ctx, 1)

	assert.Equal(t, "0.999", s.RawTotalPrice().String())
	assert.Equal(t, "1.00", s.TotalPrice().StringFixed(2))
}

// TestSnapshot verifies lines are joined with products and returned as copies.
func TestSnapshot(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()
	s.AddOrIncrement(ctx, 2)
	s.AddOrIncrement(ctx, 2)

	snap := s.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "Ceramic Mug", snap[0].Product.Name)
	assert.Equal(t, 2, snap[0].Quantity)
	assert.Equal(t, "39.98", snap[0].LineTotal.StringFixed(2))

	state := s.State()
	state.Lines[0].Quantity = 100
	assert.Equal(t, 2, s.LineQuantity(2))
}

// TestCompleteCheckout verifies checkout clears the cart and signals observers.
func TestCompleteCheckout(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	s, storage := newTestStore(t, WithObserver(obs))
	ctx := context.Background()
	s.AddOrIncrement(ctx, 4)

	state := s.CompleteCheckout(ctx)

	assert.True(t, state.IsEmpty())
	assert.Equal(t, 1, obs.checkouts)
	b, err := storage.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}
