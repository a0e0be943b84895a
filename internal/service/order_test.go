package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/manwah-pos/api/internal/cart"
	"github.com/manwah-pos/api/internal/catalog"
	"github.com/manwah-pos/api/internal/enum"
	"github.com/manwah-pos/api/internal/model"
	"github.com/manwah-pos/api/internal/store"
	"github.com/shopspring/decimal"
)

// --- Mock implementations ---

// mockOrderCreator implements OrderCreator with configurable behavior.
type mockOrderCreator struct {
	createOrderFn func(ctx context.Context, p store.CreateParams) (model.Order, error)
	calls         []store.CreateParams
}

func (m *mockOrderCreator) CreateOrder(ctx context.Context, p store.CreateParams) (model.Order, error) {
	m.calls = append(m.calls, p)
	if m.createOrderFn != nil {
		return m.createOrderFn(ctx, p)
	}
	return model.Order{
		ID:          uuid.New(),
		TableNumber: p.TableNumber,
		PeopleCount: p.PeopleCount,
		Items:       p.Items,
		Status:      model.OrderPending,
		TotalPrice:  p.TotalPrice,
		Version:     1,
	}, nil
}

// --- Test helpers ---

func newTestService() (*OrderService, *mockOrderCreator) {
	orders := &mockOrderCreator{}
	return NewOrderService(catalog.Default(), orders), orders
}

func alaCarteReq() CreateOrderRequest {
	return CreateOrderRequest{
		Mode:        enum.MenuModeALaCarte,
		TableNumber: 4,
		Items: []CreateOrderItemRequest{
			{MenuItemID: catalog.SushiCaHoiID.String(), Quantity: 2},
			{MenuItemID: catalog.BoMyNuongID.String(), Quantity: 1, Notes: "chín vừa"},
		},
	}
}

// =====================
// Validation tests
// =====================

func TestCreateOrder_InvalidMode(t *testing.T) {
	svc, orders := newTestService()
	req := alaCarteReq()
	req.Mode = "omakase"

	_, err := svc.CreateOrder(context.Background(), req)
	if !errors.Is(err, cart.ErrInvalidMode) || !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidMode as invalid input, got: %v", err)
	}
	if len(orders.calls) != 0 {
		t.Fatalf("store must not be called, got %d calls", len(orders.calls))
	}
}

func TestCreateOrder_InvalidTable(t *testing.T) {
	svc, _ := newTestService()
	req := alaCarteReq()
	req.TableNumber = 0

	_, err := svc.CreateOrder(context.Background(), req)
	if !errors.Is(err, cart.ErrInvalidTable) {
		t.Fatalf("expected ErrInvalidTable, got: %v", err)
	}
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	svc, _ := newTestService()
	req := alaCarteReq()
	req.Items = nil

	_, err := svc.CreateOrder(context.Background(), req)
	if !errors.Is(err, cart.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got: %v", err)
	}
}

func TestCreateOrder_ZeroQuantity(t *testing.T) {
	svc, _ := newTestService()
	req := alaCarteReq()
	req.Items[0].Quantity = 0

	_, err := svc.CreateOrder(context.Background(), req)
	if !errors.Is(err, cart.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got: %v", err)
	}
}

func TestCreateOrder_BadMenuItemID(t *testing.T) {
	svc, _ := newTestService()

	req := alaCarteReq()
	req.Items[0].MenuItemID = "not-a-uuid"
	_, err := svc.CreateOrder(context.Background(), req)
	if !errors.Is(err, ErrInvalidMenuItemID) {
		t.Fatalf("expected ErrInvalidMenuItemID, got: %v", err)
	}

	req = alaCarteReq()
	req.Items[0].MenuItemID = uuid.New().String()
	_, err = svc.CreateOrder(context.Background(), req)
	if !errors.Is(err, ErrMenuItemNotFound) {
		t.Fatalf("expected ErrMenuItemNotFound, got: %v", err)
	}
}

func TestCreateOrder_BuffetWithoutTier(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		Mode:        enum.MenuModeBuffet,
		TableNumber: 2,
		PeopleCount: 3,
		Items:       []CreateOrderItemRequest{{MenuItemID: catalog.SushiCaHoiID.String(), Quantity: 1}},
	})
	if !errors.Is(err, cart.ErrNoBuffetTier) {
		t.Fatalf("expected ErrNoBuffetTier, got: %v", err)
	}
}

func TestCreateOrder_TierIDNotATier(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		Mode:         enum.MenuModeBuffet,
		TableNumber:  2,
		PeopleCount:  3,
		BuffetTierID: catalog.LauThaiID.String(),
	})
	if !errors.Is(err, cart.ErrNotBuffetTier) {
		t.Fatalf("expected ErrNotBuffetTier, got: %v", err)
	}
}

func TestCreateOrder_ALaCarteWithTierID(t *testing.T) {
	svc, orders := newTestService()

	req := alaCarteReq()
	req.BuffetTierID = catalog.BuffetRoyalID.String()
	req.PeopleCount = 4

	_, err := svc.CreateOrder(context.Background(), req)
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got: %v", err)
	}
	if !errors.Is(err, cart.ErrTierNotOffered) {
		t.Errorf("expected ErrTierNotOffered, got: %v", err)
	}
	if len(orders.calls) != 0 {
		t.Fatalf("rejected cart must not reach the store")
	}
}

func TestCreateOrder_ALaCarteWithTierAsItem(t *testing.T) {
	svc, orders := newTestService()

	req := alaCarteReq()
	req.Items = append(req.Items, CreateOrderItemRequest{MenuItemID: catalog.BuffetClassicID.String(), Quantity: 1})

	_, err := svc.CreateOrder(context.Background(), req)
	if !errors.Is(err, store.ErrInvalidInput) || !errors.Is(err, cart.ErrTierNotOffered) {
		t.Fatalf("expected ErrInvalidInput wrapping ErrTierNotOffered, got: %v", err)
	}
	if _, err := svc.Quote(req); !errors.Is(err, cart.ErrTierNotOffered) {
		t.Errorf("quote: expected ErrTierNotOffered, got: %v", err)
	}
	if len(orders.calls) != 0 {
		t.Fatalf("rejected cart must not reach the store")
	}
}

// =====================
// Success tests
// =====================

func TestCreateOrder_ALaCarte(t *testing.T) {
	svc, orders := newTestService()

	result, err := svc.CreateOrder(context.Background(), alaCarteReq())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(orders.calls) != 1 {
		t.Fatalf("expected 1 store call, got %d", len(orders.calls))
	}
	p := orders.calls[0]
	if p.TableNumber != 4 {
		t.Errorf("table = %d, want 4", p.TableNumber)
	}
	if len(p.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(p.Items))
	}
	if p.Items[1].Notes != "chín vừa" {
		t.Errorf("notes = %q", p.Items[1].Notes)
	}
	// 35000*2 + 95000 = 165000, +10% tax
	if !p.TotalPrice.Equal(decimal.NewFromInt(181500)) {
		t.Errorf("total = %s, want 181500", p.TotalPrice)
	}
	if !result.Quote.Tax.Equal(decimal.NewFromInt(16500)) {
		t.Errorf("tax = %s, want 16500", result.Quote.Tax)
	}
	if result.Order.Status != model.OrderPending {
		t.Errorf("status = %s, want pending", result.Order.Status)
	}
}

func TestCreateOrder_Buffet(t *testing.T) {
	svc, orders := newTestService()

	result, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		Mode:         enum.MenuModeBuffet,
		TableNumber:  7,
		PeopleCount:  3,
		BuffetTierID: catalog.BuffetClassicID.String(),
		Items: []CreateOrderItemRequest{
			{MenuItemID: catalog.SushiCaHoiID.String(), Quantity: 5},
			{MenuItemID: catalog.TomSuNuongID.String(), Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := orders.calls[0]
	if p.PeopleCount != 3 {
		t.Errorf("people = %d, want 3", p.PeopleCount)
	}
	if len(p.Items) != 3 || !p.Items[0].MenuItem.IsBuffetPackage() {
		t.Fatalf("expected package line first, got %+v", p.Items)
	}
	if !result.Quote.Subtotal.Equal(decimal.NewFromInt(687000)) {
		t.Errorf("subtotal = %s, want 687000", result.Quote.Subtotal)
	}
}

func TestCreateOrder_StoreError(t *testing.T) {
	svc, orders := newTestService()
	orders.createOrderFn = func(ctx context.Context, p store.CreateParams) (model.Order, error) {
		return model.Order{}, store.ErrUnavailable
	}

	_, err := svc.CreateOrder(context.Background(), alaCarteReq())
	if !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got: %v", err)
	}
}

func TestQuote_DoesNotValidateOrPlace(t *testing.T) {
	svc, orders := newTestService()

	q, err := svc.Quote(CreateOrderRequest{
		Mode:         enum.MenuModeBuffet,
		TableNumber:  1,
		PeopleCount:  2,
		BuffetTierID: catalog.BuffetPremiumID.String(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !q.Subtotal.Equal(decimal.NewFromInt(578000)) {
		t.Errorf("subtotal = %s, want 578000", q.Subtotal)
	}
	if len(orders.calls) != 0 {
		t.Fatalf("quote must not place an order")
	}
}
