package store

import (
	"encoding/json"
	"fmt"

	"github.com/storefront-poc-v1/server/internal/cart/model"
	errx "github.com/storefront-poc-v1/server/internal/core/error"
)

// encodeState renders the persisted layout: a JSON array of denormalised
// product snapshots with quantities, in cart order. Output is deterministic.
func encodeState(state model.CartState, catalog model.Catalog) ([]byte, error) {
	rows := make([]model.PersistedLine, 0, len(state.Lines))
	for _, l := range state.Lines {
		row := model.PersistedLine{ID: l.ProductID, Qty: l.Quantity}
		if p, ok := catalog.Lookup(l.ProductID); ok {
			row.Name = p.Name
			row.Price = p.Price.InexactFloat64()
			row.BaseImg = p.BaseImg
		}
		rows = append(rows, row)
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("marshal cart: %w", err)
	}
	return b, nil
}

// decodeState parses the persisted layout. Any entry with a non-positive id, a
// quantity outside [1, model.MaxQuantity], or a repeated id invalidates the whole document.
func decodeState(b []byte) (model.CartState, error) {
	var rows []model.PersistedLine
	if err := json.Unmarshal(b, &rows); err != nil {
		return model.CartState{}, errx.Decode(fmt.Errorf("unmarshal cart: %w", err))
	}

	seen := make(map[int]struct{}, len(rows))
	lines := make([]model.CartLine, 0, len(rows))
	for i, r := range rows {
		if r.ID <= 0 {
			return model.CartState{}, errx.Decode(fmt.Errorf("line %d: invalid id %d", i, r.ID))
		}
		if r.Qty <= 0 || r.Qty > model.MaxQuantity {
			return model.CartState{}, errx.Decode(fmt.Errorf("line %d: invalid qty %d for id %d", i, r.Qty, r.ID))
		}
		if _, dup := seen[r.ID]; dup {
			return model.CartState{}, errx.Decode(fmt.Errorf("line %d: duplicate id %d", i, r.ID))
		}
		seen[r.ID] = struct{}{}
		lines = append(lines, model.CartLine{ProductID: r.ID, Quantity: r.Qty})
	}
	return model.CartState{Lines: lines}, nil
}
