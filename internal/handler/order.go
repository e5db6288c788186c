package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/awadhalla/souq/internal/domain"
	"github.com/awadhalla/souq/internal/service"
)

// OrderHandler serves order history and lifecycle operations.
type OrderHandler struct {
	orders service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// List handles GET /api/v1/orders.
// Customers only ever see their own orders; the filter is forced to the
// authenticated user regardless of query parameters.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	filter := orderFilterFromQuery(r)
	filter.UserID = &userID

	orders, pagination, err := h.orders.History(r.Context(), filter, pageFromQuery(r))
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"orders":     orders,
		"pagination": pagination,
	})
}

// Get handles GET /api/v1/orders/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	order, err := h.orders.Get(r.Context(), userID, orderID)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, order)
}

// Cancel handles POST /api/v1/orders/{id}/cancel
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
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

	order, err := h.orders.Cancel(r.Context(), userID, orderID)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, order)
}

// AdminList handles GET /api/v1/admin/orders with the full filter set.
func (h *OrderHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	filter := orderFilterFromQuery(r)
	if raw := r.URL.Query().Get("userId"); raw != "" {
		if id, err := parsePositiveInt(raw); err == nil {
			filter.UserID = &id
		}
	}

	orders, pagination, err := h.orders.History(r.Context(), filter, pageFromQuery(r))
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"orders":     orders,
		"pagination": pagination,
	})
}

// AdminGet handles GET /api/v1/admin/orders/{id}
func (h *OrderHandler) AdminGet(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	// Zero user id skips the ownership check for back-office staff.
	order, err := h.orders.Get(r.Context(), 0, orderID)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, order)
}

type appendStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

// AppendStatus handles POST /api/v1/admin/orders/{id}/status.
// The status log is append-only; existing entries are never rewritten.
func (h *OrderHandler) AppendStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	var req appendStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	entry, err := h.orders.AppendStatus(r.Context(), orderID, req.Status, req.Note)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, entry)
}

type paymentStatusRequest struct {
	Status string `json:"status"`
}

// UpdatePaymentStatus handles PUT /api/v1/admin/orders/{id}/payment-status
func (h *OrderHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	var req paymentStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	order, err := h.orders.UpdatePaymentStatus(r.Context(), orderID, req.Status)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, order)
}

// orderFilterFromQuery reads the shared filter parameters. The userId
// parameter is handled by the caller since customers may not set it.
func orderFilterFromQuery(r *http.Request) domain.OrderFilter {
	q := r.URL.Query()
	filter := domain.OrderFilter{
		PaymentStatus: q.Get("paymentStatus"),
		Search:        q.Get("search"),
	}
	if t, err := time.Parse(time.RFC3339, q.Get("from")); err == nil {
		filter.From = &t
	}
	if t, err := time.Parse(time.RFC3339, q.Get("to")); err == nil {
		filter.To = &t
	}
	if d, err := decimal.NewFromString(q.Get("minAmount")); err == nil {
		filter.MinAmount = &d
	}
	if d, err := decimal.NewFromString(q.Get("maxAmount")); err == nil {
		filter.MaxAmount = &d
	}
	return filter
}
