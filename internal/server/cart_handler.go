package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/YARN-DEV/NOREG/internal/cartstore"
	"github.com/YARN-DEV/NOREG/internal/domain"
	"github.com/YARN-DEV/NOREG/internal/pricing"
)

type CartHandler struct {
	carts   *cartstore.Manager
	taxRate decimal.Decimal
}

func NewCartHandler(carts *cartstore.Manager, taxRate decimal.Decimal) *CartHandler {
	return &CartHandler{
		carts:   carts,
		taxRate: taxRate,
	}
}

type CartResponseDTO struct {
	Items []domain.CartItem       `json:"items"`
	Ready bool                    `json:"ready"`
	Price domain.PricingBreakdown `json:"price"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	store := h.carts.Get(r.Context(), getSessionID(r.Context()))
	h.respondCart(w, http.StatusOK, store)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var item domain.CatalogItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if item.ID == "" {
		respondError(w, http.StatusBadRequest, "invalid_item", "item id is required")
		return
	}
	if item.Price.IsNegative() {
		respondError(w, http.StatusBadRequest, "invalid_item", "item price must not be negative")
		return
	}

	store := h.carts.Get(r.Context(), getSessionID(r.Context()))
	store.Add(item)
	h.respondCart(w, http.StatusCreated, store)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_item", "item id is required")
		return
	}

	store := h.carts.Get(r.Context(), getSessionID(r.Context()))
	store.Remove(id)
	h.respondCart(w, http.StatusOK, store)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	store := h.carts.Get(r.Context(), getSessionID(r.Context()))
	store.Clear()
	h.respondCart(w, http.StatusOK, store)
}

func (h *CartHandler) respondCart(w http.ResponseWriter, status int, store *cartstore.Store) {
	items := store.Items()
	if items == nil {
		items = []domain.CartItem{}
	}
	respondJSON(w, status, CartResponseDTO{
		Items: items,
		Ready: store.Ready(),
		Price: pricing.Compute(items, h.taxRate),
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
