// Package cart builds the line items a customer submits as one order.
package cart

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/manwah-pos/api/internal/enum"
	"github.com/manwah-pos/api/internal/model"
	"github.com/manwah-pos/api/internal/pricing"
)

// Errors returned while building or validating a cart.
var (
	ErrInvalidTable    = errors.New("table number must be > 0")
	ErrInvalidPeople   = errors.New("people count must be > 0")
	ErrInvalidQuantity = errors.New("quantity must be > 0")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrNoBuffetTier    = errors.New("select a buffet package first")
	ErrNotBuffetTier   = errors.New("item is not a buffet package")
	ErrTierNotOffered  = errors.New("buffet packages are not sold a la carte")
	ErrUnavailable     = errors.New("menu item is not available")
	ErrInvalidMode     = errors.New("invalid menu mode")
	ErrLineNotFound    = errors.New("cart line not found")
)

// Cart is an unsubmitted order. The zero value is not usable; call New.
type Cart struct {
	Mode        string
	TableNumber int
	PeopleCount int
	lines       []model.OrderItem
	now         func() time.Time
}

// New creates an empty cart for the given menu mode.
func New(mode string, tableNumber int) (*Cart, error) {
	if mode != enum.MenuModeALaCarte && mode != enum.MenuModeBuffet {
		return nil, fmt.Errorf("%q: %w", mode, ErrInvalidMode)
	}
	return &Cart{Mode: mode, TableNumber: tableNumber, PeopleCount: 1, now: time.Now}, nil
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []model.OrderItem {
	out := make([]model.OrderItem, len(c.lines))
	copy(out, c.lines)
	return out
}

// Add puts quantity units of item in the cart, merging with an existing line
// for the same dish. Buffet tiers go through SelectTier.
func (c *Cart) Add(item model.MenuItem, quantity int, notes string) (model.OrderItem, error) {
	if quantity <= 0 {
		return model.OrderItem{}, ErrInvalidQuantity
	}
	if !item.Available {
		return model.OrderItem{}, fmt.Errorf("%s: %w", item.Name, ErrUnavailable)
	}
	if item.IsBuffetPackage() {
		return c.SelectTier(item)
	}

	for i := range c.lines {
		if c.lines[i].MenuItem.ID == item.ID && c.lines[i].Notes == notes {
			c.lines[i].Quantity += quantity
			c.lines[i].UpdatedAt = c.now()
			return c.lines[i], nil
		}
	}

	now := c.now()
	line := model.OrderItem{
		ID:        uuid.New(),
		MenuItem:  item,
		Quantity:  quantity,
		Notes:     notes,
		Status:    model.ItemPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.lines = append(c.lines, line)
	return line, nil
}

// SelectTier sets the buffet package, replacing any previous one.
func (c *Cart) SelectTier(tier model.MenuItem) (model.OrderItem, error) {
	if !tier.IsBuffetPackage() {
		return model.OrderItem{}, fmt.Errorf("%s: %w", tier.Name, ErrNotBuffetTier)
	}
	if c.Mode != enum.MenuModeBuffet {
		return model.OrderItem{}, fmt.Errorf("%s: %w", tier.Name, ErrTierNotOffered)
	}
	if !tier.Available {
		return model.OrderItem{}, fmt.Errorf("%s: %w", tier.Name, ErrUnavailable)
	}

	now := c.now()
	line := model.OrderItem{
		ID:        uuid.New(),
		MenuItem:  tier,
		Quantity:  1,
		Status:    model.ItemPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i := range c.lines {
		if c.lines[i].MenuItem.IsBuffetPackage() {
			c.lines[i] = line
			return line, nil
		}
	}
	// The package line leads the order.
	c.lines = append([]model.OrderItem{line}, c.lines...)
	return line, nil
}

// Decrement removes one unit of a line; the last unit removes the line.
func (c *Cart) Decrement(lineID uuid.UUID) error {
	i := c.index(lineID)
	if i < 0 {
		return ErrLineNotFound
	}
	if c.lines[i].Quantity > 1 {
		c.lines[i].Quantity--
		c.lines[i].UpdatedAt = c.now()
		return nil
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return nil
}

// Remove drops a line regardless of quantity.
func (c *Cart) Remove(lineID uuid.UUID) error {
	i := c.index(lineID)
	if i < 0 {
		return ErrLineNotFound
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return nil
}

// SetNote replaces the free-text note of a line.
func (c *Cart) SetNote(lineID uuid.UUID, notes string) error {
	i := c.index(lineID)
	if i < 0 {
		return ErrLineNotFound
	}
	c.lines[i].Notes = notes
	c.lines[i].UpdatedAt = c.now()
	return nil
}

// SetPeople sets the guest count used for buffet pricing.
func (c *Cart) SetPeople(n int) error {
	if n <= 0 {
		return ErrInvalidPeople
	}
	c.PeopleCount = n
	return nil
}

// Quote prices the cart as it stands.
func (c *Cart) Quote() pricing.Quote {
	return pricing.Calculate(c.lines, c.Mode, c.PeopleCount)
}

// Validate reports why the cart cannot be submitted, if it cannot.
func (c *Cart) Validate() error {
	if c.TableNumber <= 0 {
		return ErrInvalidTable
	}
	if c.Mode == enum.MenuModeBuffet {
		if c.PeopleCount <= 0 {
			return ErrInvalidPeople
		}
		if !c.hasTier() {
			return ErrNoBuffetTier
		}
		return nil
	}
	if c.hasTier() {
		return ErrTierNotOffered
	}
	if len(c.lines) == 0 {
		return ErrEmptyCart
	}
	return nil
}

func (c *Cart) hasTier() bool {
	for _, l := range c.lines {
		if l.MenuItem.IsBuffetPackage() {
			return true
		}
	}
	return false
}

func (c *Cart) index(lineID uuid.UUID) int {
	for i := range c.lines {
		if c.lines[i].ID == lineID {
			return i
		}
	}
	return -1
}
