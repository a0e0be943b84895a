package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/manwah-pos/api/internal/cart"
	"github.com/manwah-pos/api/internal/model"
	"github.com/manwah-pos/api/internal/pricing"
	"github.com/manwah-pos/api/internal/store"
)

// Errors returned by the order service. All of them are also reported as
// store.ErrInvalidInput.
var (
	ErrInvalidMenuItemID = errors.New("invalid menu_item_id")
	ErrMenuItemNotFound  = errors.New("menu item not found")
	ErrInvalidTierID     = errors.New("invalid buffet_tier_id")
)

// Menu looks up catalog entries. Satisfied by *catalog.Catalog.
type Menu interface {
	Find(id uuid.UUID) (model.MenuItem, bool)
}

// OrderCreator appends orders. Satisfied by *store.Store.
type OrderCreator interface {
	CreateOrder(ctx context.Context, p store.CreateParams) (model.Order, error)
}

// CreateOrderRequest is a submitted cart.
type CreateOrderRequest struct {
	Mode         string
	TableNumber  int
	PeopleCount  int
	BuffetTierID string
	Items        []CreateOrderItemRequest
}

// CreateOrderItemRequest is a single cart line.
type CreateOrderItemRequest struct {
	MenuItemID string
	Quantity   int
	Notes      string
}

// CreateOrderResult is the placed order with the price breakdown it was
// charged at.
type CreateOrderResult struct {
	Order model.Order
	Quote pricing.Quote
}

// OrderService turns customer carts into orders.
type OrderService struct {
	menu   Menu
	orders OrderCreator
}

// NewOrderService creates a new OrderService.
func NewOrderService(menu Menu, orders OrderCreator) *OrderService {
	return &OrderService{menu: menu, orders: orders}
}

// Quote prices a request without placing it.
func (s *OrderService) Quote(req CreateOrderRequest) (pricing.Quote, error) {
	c, err := s.buildCart(req)
	if err != nil {
		return pricing.Quote{}, err
	}
	return c.Quote(), nil
}

// CreateOrder validates the cart, prices it and places it in the store.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	c, err := s.buildCart(req)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, invalid(err)
	}

	quote := c.Quote()
	order, err := s.orders.CreateOrder(ctx, store.CreateParams{
		TableNumber: c.TableNumber,
		PeopleCount: c.PeopleCount,
		Items:       c.Lines(),
		TotalPrice:  quote.Total,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &CreateOrderResult{Order: order, Quote: quote}, nil
}

func (s *OrderService) buildCart(req CreateOrderRequest) (*cart.Cart, error) {
	c, err := cart.New(req.Mode, req.TableNumber)
	if err != nil {
		return nil, invalid(err)
	}
	if req.PeopleCount != 0 {
		if err := c.SetPeople(req.PeopleCount); err != nil {
			return nil, invalid(err)
		}
	}

	if req.BuffetTierID != "" {
		id, err := uuid.Parse(req.BuffetTierID)
		if err != nil {
			return nil, invalid(ErrInvalidTierID)
		}
		tier, ok := s.menu.Find(id)
		if !ok {
			return nil, invalid(fmt.Errorf("buffet tier %s: %w", id, ErrMenuItemNotFound))
		}
		if _, err := c.SelectTier(tier); err != nil {
			return nil, invalid(err)
		}
	}

	for i, line := range req.Items {
		id, err := uuid.Parse(line.MenuItemID)
		if err != nil {
			return nil, invalid(fmt.Errorf("items[%d]: %w", i, ErrInvalidMenuItemID))
		}
		item, ok := s.menu.Find(id)
		if !ok {
			return nil, invalid(fmt.Errorf("items[%d]: %w", i, ErrMenuItemNotFound))
		}
		if _, err := c.Add(item, line.Quantity, line.Notes); err != nil {
			return nil, invalid(fmt.Errorf("items[%d]: %w", i, err))
		}
	}
	return c, nil
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", store.ErrInvalidInput, err)
}
