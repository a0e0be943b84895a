// Package model holds the value types shared by the order store, the
// transition engine, pricing and the role views.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/manwah-pos/api/internal/enum"
	"github.com/shopspring/decimal"
)

// ItemStatus is the fulfillment status of a single order line.
type ItemStatus string

const (
	ItemPending ItemStatus = enum.ItemStatusPending
	ItemCooking ItemStatus = enum.ItemStatusCooking
	ItemReady   ItemStatus = enum.ItemStatusReady
	ItemServed  ItemStatus = enum.ItemStatusServed
)

var itemRank = map[ItemStatus]int{
	ItemPending: 0,
	ItemCooking: 1,
	ItemReady:   2,
	ItemServed:  3,
}

// Valid reports whether s is a known item status.
func (s ItemStatus) Valid() bool {
	_, ok := itemRank[s]
	return ok
}

// Rank is the position of s in the pending→served sequence, -1 if unknown.
func (s ItemStatus) Rank() int {
	if r, ok := itemRank[s]; ok {
		return r
	}
	return -1
}

// AtLeast reports whether s has progressed at least as far as other.
func (s ItemStatus) AtLeast(other ItemStatus) bool {
	return s.Rank() >= other.Rank()
}

// OrderStatus is the aggregate status of an order.
type OrderStatus string

const (
	OrderPending OrderStatus = enum.OrderStatusPending
	OrderCooking OrderStatus = enum.OrderStatusCooking
	OrderReady   OrderStatus = enum.OrderStatusReady
	OrderServed  OrderStatus = enum.OrderStatusServed
	OrderPaid    OrderStatus = enum.OrderStatusPaid
)

// OrderStatuses lists every order status in lifecycle order.
var OrderStatuses = []OrderStatus{OrderPending, OrderCooking, OrderReady, OrderServed, OrderPaid}

var orderRank = map[OrderStatus]int{
	OrderPending: 0,
	OrderCooking: 1,
	OrderReady:   2,
	OrderServed:  3,
	OrderPaid:    4,
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	_, ok := orderRank[s]
	return ok
}

// Rank is the position of s in the pending→paid sequence, -1 if unknown.
func (s OrderStatus) Rank() int {
	if r, ok := orderRank[s]; ok {
		return r
	}
	return -1
}

// ItemStatus returns the item status with the same name. Paid has none.
func (s OrderStatus) ItemStatus() (ItemStatus, bool) {
	is := ItemStatus(s)
	return is, is.Valid()
}

// MenuItem is an immutable catalog entry. Prices are whole đồng.
type MenuItem struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Category    string    `json:"category"`
	Image       string    `json:"image,omitempty"`
	Available   bool      `json:"available"`
	Notes       string    `json:"notes,omitempty"`
}

// IsBuffetPackage reports whether the item is a per-person buffet tier.
func (m MenuItem) IsBuffetPackage() bool {
	return m.Category == enum.CategoryBuffetPackage
}

// OrderItem is one line of an order. MenuItem is copied by value so later
// catalog edits never rewrite history.
type OrderItem struct {
	ID        uuid.UUID  `json:"id"`
	MenuItem  MenuItem   `json:"menu_item"`
	Quantity  int        `json:"quantity"`
	Notes     string     `json:"notes,omitempty"`
	Status    ItemStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Order is one table's set of requested items.
type Order struct {
	ID          uuid.UUID       `json:"id"`
	TableNumber int             `json:"table_number"`
	PeopleCount int             `json:"people_count"`
	Items       []OrderItem     `json:"items"`
	Status      OrderStatus     `json:"status"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Version     int64           `json:"version"`
}

// Clone returns a deep copy whose item slice can be mutated freely.
func (o Order) Clone() Order {
	c := o
	c.Items = make([]OrderItem, len(o.Items))
	copy(c.Items, o.Items)
	return c
}

// ItemIndex returns the index of the item with the given id, or -1.
func (o Order) ItemIndex(itemID uuid.UUID) int {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// BuffetLine returns the buffet package line, if the order has one.
func (o Order) BuffetLine() (OrderItem, bool) {
	for _, it := range o.Items {
		if it.MenuItem.IsBuffetPackage() {
			return it, true
		}
	}
	return OrderItem{}, false
}

// HasItemWithStatus reports whether any line is currently at s.
func (o Order) HasItemWithStatus(s ItemStatus) bool {
	for _, it := range o.Items {
		if it.Status == s {
			return true
		}
	}
	return false
}

// OrderPatch is a merge-patch of the non-status fields of an order.
// Nil fields are left untouched.
type OrderPatch struct {
	TableNumber *int             `json:"table_number,omitempty"`
	PeopleCount *int             `json:"people_count,omitempty"`
	TotalPrice  *decimal.Decimal `json:"total_price,omitempty"`
	Items       []ItemPatch      `json:"items,omitempty"`
}

// ItemPatch corrects one line. Quantity 0 removes the line.
type ItemPatch struct {
	ID       uuid.UUID `json:"id"`
	Quantity *int      `json:"quantity,omitempty"`
	Notes    *string   `json:"notes,omitempty"`
}
