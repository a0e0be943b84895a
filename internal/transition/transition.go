// Package transition decides legal status moves for order lines and orders
// and rolls item-level changes up into the order status.
package transition

import (
	"errors"
	"fmt"
	"time"

	"github.com/manwah-pos/api/internal/enum"
	"github.com/manwah-pos/api/internal/model"
)

// Errors returned by the transition engine.
var (
	ErrNoTransition = errors.New("no legal transition")
	ErrBackward     = errors.New("status cannot move backward")
	ErrPaidTerminal = errors.New("paid orders cannot change status")
	ErrPaidNotReady = errors.New("only served orders can be paid")
	ErrUnknown      = errors.New("unknown status")
)

// itemMoves maps a role to the item statuses it may advance and where they go.
var itemMoves = map[string]map[model.ItemStatus]model.ItemStatus{
	enum.RoleKitchen: {
		model.ItemPending: model.ItemCooking,
		model.ItemCooking: model.ItemReady,
	},
	enum.RoleWaiter: {
		model.ItemReady: model.ItemServed,
	},
}

var orderMoves = map[model.OrderStatus]model.OrderStatus{
	model.OrderPending: model.OrderCooking,
	model.OrderCooking: model.OrderReady,
	model.OrderReady:   model.OrderServed,
	model.OrderServed:  model.OrderPaid,
}

// NextItemStatus returns the status a line moves to when role advances it.
func NextItemStatus(current model.ItemStatus, role string) (model.ItemStatus, error) {
	next, ok := itemMoves[role][current]
	if !ok {
		return "", fmt.Errorf("%s cannot advance %s item: %w", role, current, ErrNoTransition)
	}
	return next, nil
}

// NextOrderStatus returns the successor of current; paid has none.
func NextOrderStatus(current model.OrderStatus) (model.OrderStatus, error) {
	next, ok := orderMoves[current]
	if !ok {
		return "", fmt.Errorf("order in %s: %w", current, ErrNoTransition)
	}
	return next, nil
}

// CanSetItemStatus checks a direct item status write. Forward skips are
// allowed; backward moves are not.
func CanSetItemStatus(current, next model.ItemStatus) error {
	if !next.Valid() {
		return fmt.Errorf("%q: %w", next, ErrUnknown)
	}
	if next.Rank() < current.Rank() {
		return fmt.Errorf("item %s to %s: %w", current, next, ErrBackward)
	}
	return nil
}

// CanSetOrderStatus checks a direct order status write. Only the paid edges
// are guarded; other jumps are accepted even when items disagree.
func CanSetOrderStatus(current, next model.OrderStatus) error {
	if !next.Valid() {
		return fmt.Errorf("%q: %w", next, ErrUnknown)
	}
	if current == model.OrderPaid && next != model.OrderPaid {
		return ErrPaidTerminal
	}
	if next == model.OrderPaid && current != model.OrderServed && current != model.OrderPaid {
		return fmt.Errorf("order in %s: %w", current, ErrPaidNotReady)
	}
	return nil
}

// DeriveOrderStatus computes the order status after one of its items moved
// to newItemStatus. order must already carry the updated item. Rules apply in
// priority order and the result never moves the order backward.
func DeriveOrderStatus(order model.Order, newItemStatus model.ItemStatus) model.OrderStatus {
	current := order.Status
	if current == model.OrderPaid {
		return current
	}

	candidate := current
	switch {
	case newItemStatus == model.ItemReady && allAtLeast(order.Items, model.ItemReady):
		candidate = model.OrderReady
	case newItemStatus == model.ItemCooking && current == model.OrderPending:
		candidate = model.OrderCooking
	case newItemStatus == model.ItemServed && allAtLeast(order.Items, model.ItemServed):
		candidate = model.OrderServed
	}

	if candidate.Rank() > current.Rank() {
		return candidate
	}
	return current
}

// CatchUpItems moves every item still at the order's previous status to the
// new one. Items already ahead, backward moves and paid are left alone.
// It reports whether any item changed.
func CatchUpItems(items []model.OrderItem, prev, next model.OrderStatus, now time.Time) bool {
	if next.Rank() <= prev.Rank() {
		return false
	}
	from, ok := prev.ItemStatus()
	if !ok {
		return false
	}
	to, ok := next.ItemStatus()
	if !ok {
		return false
	}

	changed := false
	for i := range items {
		if items[i].Status == from {
			items[i].Status = to
			items[i].UpdatedAt = now
			changed = true
		}
	}
	return changed
}

// MinItemStatus is the least progressed status across items.
func MinItemStatus(items []model.OrderItem) model.ItemStatus {
	if len(items) == 0 {
		return model.ItemPending
	}
	lowest := items[0].Status
	for _, it := range items[1:] {
		if it.Status.Rank() < lowest.Rank() {
			lowest = it.Status
		}
	}
	return lowest
}

func allAtLeast(items []model.OrderItem, s model.ItemStatus) bool {
	for _, it := range items {
		if !it.Status.AtLeast(s) {
			return false
		}
	}
	return true
}
