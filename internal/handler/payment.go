package handler

import (
	"net/http"

	"github.com/awadhalla/souq/internal/service"
)

// PaymentHandler serves payment records. Payments are created by checkout
// and settled by webhooks; this handler is read-only.
type PaymentHandler struct {
	payments service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(payments service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// GetByOrder handles GET /api/v1/orders/{id}/payment
func (h *PaymentHandler) GetByOrder(w http.ResponseWriter, r *http.Request) {
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

	payment, err := h.payments.GetByOrder(r.Context(), userID, orderID)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, payment)
}

// History handles GET /api/v1/payments
func (h *PaymentHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	payments, pagination, err := h.payments.History(r.Context(), userID, pageFromQuery(r))
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"payments":   payments,
		"pagination": pagination,
	})
}
