package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/funkystitch/storefront/internal/core/domain"
	"github.com/funkystitch/storefront/internal/core/service"
)

type CartHandler struct {
	carts  *service.CartService
	logger zerolog.Logger
}

func NewCartHandler(carts *service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{carts: carts, logger: logger}
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.GetCart(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []domain.CartItem `json:"items"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	cart, err := h.carts.SaveCart(r.Context(), userFrom(r.Context()).ID, req.Items)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.ClearCart(r.Context(), userFrom(r.Context()).ID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "cart cleared"})
}
