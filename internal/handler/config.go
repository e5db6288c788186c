package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/awadhalla/souq/internal/repository"
	"github.com/awadhalla/souq/internal/service"
)

// ConfigHandler exposes the checkout pricing configuration to back-office
// staff.
type ConfigHandler struct {
	config service.ConfigService
}

// NewConfigHandler creates a new ConfigHandler.
func NewConfigHandler(config service.ConfigService) *ConfigHandler {
	return &ConfigHandler{config: config}
}

// ListTaxes handles GET /api/v1/admin/taxes
func (h *ConfigHandler) ListTaxes(w http.ResponseWriter, r *http.Request) {
	taxes, err := h.config.ListTaxes(r.Context())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"taxes": taxes})
}

type createTaxRequest struct {
	Name           string              `json:"name"`
	Rate           decimal.Decimal     `json:"rate"`
	MinimumAmount  decimal.Decimal     `json:"minimumAmount"`
	MaximumAmount  decimal.NullDecimal `json:"maximumAmount"`
	ApplicableFrom time.Time           `json:"applicableFrom"`
	ApplicableTo   *time.Time          `json:"applicableTo,omitempty"`
	Active         bool                `json:"isActive"`
}

// CreateTax handles POST /api/v1/admin/taxes
func (h *ConfigHandler) CreateTax(w http.ResponseWriter, r *http.Request) {
	var req createTaxRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	tax, err := h.config.CreateTax(r.Context(), repository.CreateTaxParams{
		Name:           req.Name,
		Rate:           req.Rate,
		MinimumAmount:  req.MinimumAmount,
		MaximumAmount:  req.MaximumAmount,
		ApplicableFrom: req.ApplicableFrom,
		ApplicableTo:   req.ApplicableTo,
		Active:         req.Active,
	})
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, tax)
}

// ListDeliveryPricing handles GET /api/v1/admin/delivery-pricing
func (h *ConfigHandler) ListDeliveryPricing(w http.ResponseWriter, r *http.Request) {
	pricing, err := h.config.ListDeliveryPricing(r.Context())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"deliveryPricing": pricing})
}

type deliveryPricingRequest struct {
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
}

// UpsertDeliveryPricing handles PUT /api/v1/admin/delivery-pricing
func (h *ConfigHandler) UpsertDeliveryPricing(w http.ResponseWriter, r *http.Request) {
	var req deliveryPricingRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	pricing, err := h.config.UpsertDeliveryPricing(r.Context(), req.Type, req.Amount)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, pricing)
}
