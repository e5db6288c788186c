package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/awadhalla/souq/internal/repository"
	"github.com/awadhalla/souq/internal/service"
)

// PickDropHandler serves point-to-point courier requests.
type PickDropHandler struct {
	pickdrops service.PickDropService
}

// NewPickDropHandler creates a new PickDropHandler.
func NewPickDropHandler(pickdrops service.PickDropService) *PickDropHandler {
	return &PickDropHandler{pickdrops: pickdrops}
}

type quoteRequest struct {
	ItemWeightKg decimal.Decimal `json:"itemWeight"`
}

// Quote handles POST /api/v1/pickdrops/quote.
// The fee depends only on weight, so no record is created.
func (h *PickDropHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	fee, err := h.pickdrops.Quote(req.ItemWeightKg)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"fee": fee})
}

type createPickDropRequest struct {
	SenderName          string          `json:"senderName"`
	SenderContact       string          `json:"senderContact"`
	ReceiverName        string          `json:"receiverName"`
	ReceiverContact     string          `json:"receiverContact"`
	ItemDescription     string          `json:"itemDescription"`
	ItemWeightKg        decimal.Decimal `json:"itemWeight"`
	PreferredPickupTime *time.Time      `json:"preferredPickupTime,omitempty"`
}

// Create handles POST /api/v1/pickdrops
func (h *PickDropHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	var req createPickDropRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	pickDrop, err := h.pickdrops.Create(r.Context(), repository.CreatePickDropParams{
		UserID:              userID,
		SenderName:          req.SenderName,
		SenderContact:       req.SenderContact,
		ReceiverName:        req.ReceiverName,
		ReceiverContact:     req.ReceiverContact,
		ItemDescription:     req.ItemDescription,
		ItemWeightKg:        req.ItemWeightKg,
		PreferredPickupTime: req.PreferredPickupTime,
	})
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, pickDrop)
}

// Get handles GET /api/v1/pickdrops/{id}
func (h *PickDropHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	pickDrop, err := h.pickdrops.Get(r.Context(), userID, id)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, pickDrop)
}

// List handles GET /api/v1/pickdrops
func (h *PickDropHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	pickDrops, pagination, err := h.pickdrops.History(r.Context(), userID, pageFromQuery(r))
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"pickDrops":  pickDrops,
		"pagination": pagination,
	})
}

type pickDropStatusRequest struct {
	Status        string `json:"status"`
	AssignedRider string `json:"assignedRider,omitempty"`
}

// UpdateStatus handles PUT /api/v1/admin/pickdrops/{id}/status
func (h *PickDropHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	var req pickDropStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	pickDrop, err := h.pickdrops.UpdateStatus(r.Context(), id, req.Status, req.AssignedRider)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, pickDrop)
}
