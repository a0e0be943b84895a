package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/manwah-pos/api/internal/enum"
	"github.com/manwah-pos/api/internal/middleware"
	"github.com/manwah-pos/api/internal/model"
	"github.com/manwah-pos/api/internal/pricing"
	"github.com/manwah-pos/api/internal/service"
	"github.com/manwah-pos/api/internal/view"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
}

// OrderStore defines the store methods needed by order read/update handlers.
// Satisfied by *store.Store; narrow interface for testability.
type OrderStore interface {
	Orders() []model.Order
	Get(orderID uuid.UUID) (model.Order, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, patch model.OrderPatch) (model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) (model.Order, error)
	AdvanceOrder(ctx context.Context, orderID uuid.UUID) (model.Order, error)
	UpdateItemStatus(ctx context.Context, orderID, itemID uuid.UUID, status model.ItemStatus) (model.Order, error)
	AdvanceItem(ctx context.Context, orderID, itemID uuid.UUID, role string) (model.Order, error)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc   OrderServicer
	store OrderStore
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderStore) *OrderHandler {
	return &OrderHandler{svc: svc, store: store}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted at /orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Post("/{id}/advance", h.Advance)
	r.Patch("/{id}/items/{itemID}/status", h.UpdateItemStatus)
	r.Post("/{id}/items/{itemID}/advance", h.AdvanceItem)
}

// --- Request / Response types ---

type createOrderRequest struct {
	Mode         string                   `json:"mode"`
	TableNumber  int                      `json:"table_number"`
	PeopleCount  int                      `json:"people_count"`
	BuffetTierID string                   `json:"buffet_tier_id"`
	Items        []createOrderItemRequest `json:"items"`
}

type createOrderItemRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
	Notes      string `json:"notes"`
}

func (req createOrderRequest) toService() service.CreateOrderRequest {
	mode := req.Mode
	if mode == "" {
		mode = enum.MenuModeALaCarte
	}
	items := make([]service.CreateOrderItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.CreateOrderItemRequest{
			MenuItemID: it.MenuItemID,
			Quantity:   it.Quantity,
			Notes:      it.Notes,
		}
	}
	return service.CreateOrderRequest{
		Mode:         mode,
		TableNumber:  req.TableNumber,
		PeopleCount:  req.PeopleCount,
		BuffetTierID: req.BuffetTierID,
		Items:        items,
	}
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type advanceItemRequest struct {
	Role string `json:"role"`
}

type orderResponse struct {
	model.Order
	Mode      string `json:"mode"`
	TotalText string `json:"total_text"`
}

type createOrderResponse struct {
	orderResponse
	Quote quoteResponse `json:"quote"`
}

func toOrderResponse(o model.Order) orderResponse {
	return orderResponse{
		Order:     o,
		Mode:      pricing.ModeOf(o),
		TotalText: pricing.FormatVND(o.TotalPrice),
	}
}

func toOrderResponses(orders []model.Order) []orderResponse {
	out := make([]orderResponse, len(orders))
	for i, o := range orders {
		out[i] = toOrderResponse(o)
	}
	return out
}

// --- Handlers ---

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	// A customer session always orders for its own table.
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil && claims.Role == enum.RoleCustomer {
		req.TableNumber = claims.TableNumber
	}

	result, err := h.svc.CreateOrder(r.Context(), req.toService())
	if err != nil {
		writeStoreError(w, r, "create order", err)
		return
	}

	writeJSON(w, http.StatusCreated, createOrderResponse{
		orderResponse: toOrderResponse(result.Order),
		Quote:         toQuoteResponse(result.Quote),
	})
}

// List handles GET /orders?search=&status=&table=.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	f, ok := parseFilter(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(view.Apply(h.store.Orders(), f)))
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseID(w, r, "id", "invalid order ID")
	if !ok {
		return
	}

	order, err := h.store.Get(orderID)
	if err != nil {
		writeStoreError(w, r, "get order", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// Update handles PATCH /orders/{id}. Status fields are ignored; use the
// status endpoints for lifecycle changes.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseID(w, r, "id", "invalid order ID")
	if !ok {
		return
	}

	var patch model.OrderPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	order, err := h.store.UpdateOrder(r.Context(), orderID, patch)
	if err != nil {
		writeStoreError(w, r, "update order", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// UpdateStatus handles PATCH /orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseID(w, r, "id", "invalid order ID")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	order, err := h.store.UpdateOrderStatus(r.Context(), orderID, model.OrderStatus(req.Status))
	if err != nil {
		writeStoreError(w, r, "update order status", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// Advance handles POST /orders/{id}/advance.
func (h *OrderHandler) Advance(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseID(w, r, "id", "invalid order ID")
	if !ok {
		return
	}

	order, err := h.store.AdvanceOrder(r.Context(), orderID)
	if err != nil {
		writeStoreError(w, r, "advance order", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// UpdateItemStatus handles PATCH /orders/{id}/items/{itemID}/status.
func (h *OrderHandler) UpdateItemStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseID(w, r, "id", "invalid order ID")
	if !ok {
		return
	}
	itemID, ok := parseID(w, r, "itemID", "invalid item ID")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	order, err := h.store.UpdateItemStatus(r.Context(), orderID, itemID, model.ItemStatus(req.Status))
	if err != nil {
		writeStoreError(w, r, "update item status", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// AdvanceItem handles POST /orders/{id}/items/{itemID}/advance. The acting
// role comes from the body, falling back to the session label.
func (h *OrderHandler) AdvanceItem(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseID(w, r, "id", "invalid order ID")
	if !ok {
		return
	}
	itemID, ok := parseID(w, r, "itemID", "invalid item ID")
	if !ok {
		return
	}

	var req advanceItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Role == "" {
		if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
			req.Role = claims.Role
		}
	}
	if req.Role == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "role is required"})
		return
	}

	order, err := h.store.AdvanceItem(r.Context(), orderID, itemID, req.Role)
	if err != nil {
		writeStoreError(w, r, "advance item", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func parseID(w http.ResponseWriter, r *http.Request, param, msg string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return uuid.Nil, false
	}
	return id, true
}
