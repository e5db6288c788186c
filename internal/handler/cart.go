package handler

import (
	"net/http"

	"github.com/awadhalla/souq/internal/service"
)

// CartHandler serves the authenticated user's shopping cart.
type CartHandler struct {
	carts service.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(carts service.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	cart, err := h.carts.GetCart(r.Context(), userID)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, cart)
}

type addItemRequest struct {
	ProductID   int64  `json:"productId"`
	Quantity    int    `json:"quantity"`
	VariationID string `json:"variationId,omitempty"`
}

// AddItem handles POST /api/v1/cart/items.
// The quantity is the desired total for the line, not an increment.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	cart, err := h.carts.AddItem(r.Context(), userID, service.AddItemParams{
		ProductID:   req.ProductID,
		Quantity:    req.Quantity,
		VariationID: req.VariationID,
	})
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, cart)
}

// UpdateQuantity handles PATCH /api/v1/cart/items.
// A quantity of zero or less removes the line.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	cart, err := h.carts.UpdateItemQuantity(r.Context(), userID, req.ProductID, req.VariationID, req.Quantity)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, cart)
}

// RemoveItem handles DELETE /api/v1/cart/items/{productID}.
// Without a variationId query parameter it removes every line for the
// product and succeeds even when none exist; with one it removes that exact
// line and 404s when absent.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	productID, err := pathID(r, "productID")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	var cart any
	if variationID := r.URL.Query().Get("variationId"); variationID != "" {
		cart, err = h.carts.RemoveSpecificItem(r.Context(), userID, productID, variationID)
	} else {
		cart, err = h.carts.RemoveItem(r.Context(), userID, productID)
	}
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, cart)
}

// ClearCart handles POST /api/v1/cart/clear
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	if err := h.carts.ClearCart(r.Context(), userID); err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{"message": "Cart cleared"})
}

// Totals handles GET /api/v1/cart/totals
func (h *CartHandler) Totals(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	totals, err := h.carts.Totals(r.Context(), userID)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, totals)
}

// Validate handles GET /api/v1/cart/validate
func (h *CartHandler) Validate(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	validation, err := h.carts.ValidateForCheckout(r.Context(), userID)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, validation)
}
