package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/manwah-pos/api/internal/model"
	"github.com/manwah-pos/api/internal/pricing"
	"github.com/manwah-pos/api/internal/service"
)

// MenuStore is the read-only catalog. Satisfied by *catalog.Catalog.
type MenuStore interface {
	Categories() []string
	Search(term, category string) []model.MenuItem
	TiersByPrice() []model.MenuItem
}

// Quoter prices a cart without placing it. Satisfied by
// *service.OrderService.
type Quoter interface {
	Quote(req service.CreateOrderRequest) (pricing.Quote, error)
}

// MenuHandler serves the catalog and cart quotes.
type MenuHandler struct {
	menu   MenuStore
	quoter Quoter
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(menu MenuStore, quoter Quoter) *MenuHandler {
	return &MenuHandler{menu: menu, quoter: quoter}
}

// RegisterRoutes registers catalog endpoints on the given Chi router.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/menu", h.List)
	r.Get("/menu/categories", h.Categories)
	r.Get("/buffet-tiers", h.Tiers)
	r.Post("/quote", h.Quote)
}

type quoteResponse struct {
	pricing.Quote
	SubtotalText string `json:"subtotal_text"`
	TaxText      string `json:"tax_text"`
	TotalText    string `json:"total_text"`
}

func toQuoteResponse(q pricing.Quote) quoteResponse {
	return quoteResponse{
		Quote:        q,
		SubtotalText: pricing.FormatVND(q.Subtotal),
		TaxText:      pricing.FormatVND(q.Tax),
		TotalText:    pricing.FormatVND(q.Total),
	}
}

// List handles GET /menu?search=&category=.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items := h.menu.Search(q.Get("search"), q.Get("category"))
	if items == nil {
		items = []model.MenuItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// Categories handles GET /menu/categories.
func (h *MenuHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats := h.menu.Categories()
	if cats == nil {
		cats = []string{}
	}
	writeJSON(w, http.StatusOK, cats)
}

// Tiers handles GET /buffet-tiers.
func (h *MenuHandler) Tiers(w http.ResponseWriter, r *http.Request) {
	tiers := h.menu.TiersByPrice()
	if tiers == nil {
		tiers = []model.MenuItem{}
	}
	writeJSON(w, http.StatusOK, tiers)
}

// Quote handles POST /quote. The body is the same cart POST /orders takes;
// an incomplete cart still prices, so the cart screen can show totals as it
// is filled in.
func (h *MenuHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	quote, err := h.quoter.Quote(req.toService())
	if err != nil {
		writeStoreError(w, r, "quote cart", err)
		return
	}
	writeJSON(w, http.StatusOK, toQuoteResponse(quote))
}
