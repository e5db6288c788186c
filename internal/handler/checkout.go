package handler

import (
	"net/http"
	"time"

	"github.com/awadhalla/souq/internal/domain"
	"github.com/awadhalla/souq/internal/service"
)

// CheckoutHandler prices carts and turns them into orders.
type CheckoutHandler struct {
	checkout service.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkout service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

// DeliveryOptions handles GET /api/v1/checkout/delivery-options
func (h *CheckoutHandler) DeliveryOptions(w http.ResponseWriter, r *http.Request) {
	options, err := h.checkout.DeliveryOptions(r.Context())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"options": options})
}

type summaryRequest struct {
	DeliveryType string `json:"deliveryType"`
}

// Summary handles POST /api/v1/checkout/summary.
// It prices the current cart for the chosen delivery type without creating
// an order, so the client can show the amount before the customer commits.
func (h *CheckoutHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	var req summaryRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	summary, err := h.checkout.CalculateSummary(r.Context(), userID, req.DeliveryType)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, summary)
}

type checkoutRequest struct {
	DeliveryType  string                 `json:"deliveryType"`
	PaymentMethod string                 `json:"paymentMethod"`
	ShippingAddr  domain.ShippingAddress `json:"shippingAddress"`
	ScheduledAt   *time.Time             `json:"scheduledAt,omitempty"`
	CustomerEmail string                 `json:"customerEmail,omitempty"`
}

// Checkout handles POST /api/v1/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	result, err := h.checkout.ProcessCheckout(r.Context(), userID, service.CheckoutParams{
		DeliveryType:  req.DeliveryType,
		PaymentMethod: req.PaymentMethod,
		ShippingAddr:  req.ShippingAddr,
		ScheduledAt:   req.ScheduledAt,
		CustomerEmail: req.CustomerEmail,
	})
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, result)
}

// RetryPayment handles POST /api/v1/orders/{id}/payment.
// It opens a fresh gateway session for an order whose card payment never
// settled. The order keeps its single payment row.
func (h *CheckoutHandler) RetryPayment(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	orderID, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	result, err := h.checkout.CreatePaymentForOrder(r.Context(), userID, orderID)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, result)
}
