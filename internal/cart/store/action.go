package store

import (
	"context"
	"strings"

	"github.com/storefront-poc-v1/server/internal/cart/model"
	logx "github.com/storefront-poc-v1/server/pkg/logger"
)

// ActionKind names a cart command coming from the UI.
type ActionKind string

const (
	ActionAdd       ActionKind = "add"
	ActionIncrement ActionKind = "increment"
	ActionDecrement ActionKind = "decrement"
	ActionChange    ActionKind = "change"
	ActionRemove    ActionKind = "remove"
	ActionClear     ActionKind = "clear"
	ActionCheckout  ActionKind = "checkout"
)

// Action is one UI command. Delta is only read for ActionChange.
type Action struct {
	Kind      ActionKind `json:"kind"`
	ProductID int        `json:"product_id,omitempty"`
	Delta     int        `json:"delta,omitempty"`
}

var actionAliases = map[string]ActionKind{
	"add":         ActionAdd,
	"add-to-cart": ActionAdd,
	"increment":   ActionIncrement,
	"inc":         ActionIncrement,
	"decrement":   ActionDecrement,
	"dec":         ActionDecrement,
	"change":      ActionChange,
	"remove":      ActionRemove,
	"clear":       ActionClear,
	"checkout":    ActionCheckout,
}

// ParseActionKind maps a canonical name or a UI control class name to its kind.
func ParseActionKind(v string) (ActionKind, bool) {
	k, ok := actionAliases[strings.ToLower(strings.TrimSpace(v))]
	return k, ok
}

// Dispatch routes an action to the matching operation. Unknown kinds are no-ops.
func (s *Store) Dispatch(ctx context.Context, a Action) model.CartState {
	switch a.Kind {
	case ActionAdd:
		return s.AddOrIncrement(ctx, a.ProductID)
	case ActionIncrement:
		return s.ChangeQuantity(ctx, a.ProductID, 1)
	case ActionDecrement:
		return s.ChangeQuantity(ctx, a.ProductID, -1)
	case ActionChange:
		return s.ChangeQuantity(ctx, a.ProductID, a.Delta)
	case ActionRemove:
		return s.Remove(ctx, a.ProductID)
	case ActionClear:
		return s.Clear(ctx)
	case ActionCheckout:
		return s.CompleteCheckout(ctx)
	default:
		logx.Debug().Str("kind", string(a.Kind)).Msg("ignoring unknown cart action")
		return s.State()
	}
}
