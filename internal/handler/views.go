package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/manwah-pos/api/internal/enum"
	"github.com/manwah-pos/api/internal/middleware"
	"github.com/manwah-pos/api/internal/model"
	"github.com/manwah-pos/api/internal/view"
)

// OrderLister returns a snapshot of every order. Satisfied by *store.Store.
type OrderLister interface {
	Orders() []model.Order
}

// ViewHandler serves the per-role read models.
type ViewHandler struct {
	orders OrderLister
	now    func() time.Time
}

// NewViewHandler creates a new ViewHandler. A nil clock uses time.Now.
func NewViewHandler(orders OrderLister, now func() time.Time) *ViewHandler {
	if now == nil {
		now = time.Now
	}
	return &ViewHandler{orders: orders, now: now}
}

// RegisterRoutes registers view endpoints. Expected to be mounted at /views.
func (h *ViewHandler) RegisterRoutes(r chi.Router) {
	r.Get("/kitchen", h.Kitchen)
	r.Get("/waiter", h.Waiter)
	r.Get("/ready", h.Ready)
	r.Get("/active", h.Active)
	r.Get("/stats", h.Stats)
	r.Get("/status-counts", h.StatusCounts)
	r.Get("/tables/{table}/orders", h.TableOrders)
	r.Get("/my-orders", h.MyOrders)
}

type waiterBoardResponse struct {
	Active    []orderResponse `json:"active"`
	Completed []orderResponse `json:"completed"`
}

// Kitchen handles GET /views/kitchen.
func (h *ViewHandler) Kitchen(w http.ResponseWriter, r *http.Request) {
	f, ok := parseFilter(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(view.KitchenQueue(h.orders.Orders(), f)))
}

// Waiter handles GET /views/waiter.
func (h *ViewHandler) Waiter(w http.ResponseWriter, r *http.Request) {
	f, ok := parseFilter(w, r)
	if !ok {
		return
	}
	board := view.WaiterBoard(h.orders.Orders(), f)
	writeJSON(w, http.StatusOK, waiterBoardResponse{
		Active:    toOrderResponses(board.Active),
		Completed: toOrderResponses(board.Completed),
	})
}

// Ready handles GET /views/ready. Filters do not apply.
func (h *ViewHandler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toOrderResponses(view.ReadyToServe(h.orders.Orders())))
}

// Active handles GET /views/active.
func (h *ViewHandler) Active(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toOrderResponses(view.ActiveOrders(h.orders.Orders())))
}

// Stats handles GET /views/stats?window=day|week|month. The window
// defaults to day; search, status and table narrow the orders counted.
func (h *ViewHandler) Stats(w http.ResponseWriter, r *http.Request) {
	f, ok := parseFilter(w, r)
	if !ok {
		return
	}
	window := r.URL.Query().Get("window")
	if window == "" {
		window = enum.WindowDay
	}
	summary, err := view.Statistics(view.Apply(h.orders.Orders(), f), window, h.now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// StatusCounts handles GET /views/status-counts.
func (h *ViewHandler) StatusCounts(w http.ResponseWriter, r *http.Request) {
	f, ok := parseFilter(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, view.StatusCounts(h.orders.Orders(), f))
}

// TableOrders handles GET /views/tables/{table}/orders.
func (h *ViewHandler) TableOrders(w http.ResponseWriter, r *http.Request) {
	table, err := strconv.Atoi(chi.URLParam(r, "table"))
	if err != nil || table <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table number"})
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(view.TableHistory(h.orders.Orders(), table)))
}

// MyOrders handles GET /views/my-orders for a customer session.
func (h *ViewHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil || claims.TableNumber <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "a customer session is required"})
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(view.TableHistory(h.orders.Orders(), claims.TableNumber)))
}

func parseFilter(w http.ResponseWriter, r *http.Request) (view.Filter, bool) {
	f, err := view.ParseFilter(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return view.Filter{}, false
	}
	return f, true
}
