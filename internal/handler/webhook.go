package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/awadhalla/souq/internal/billing"
	"github.com/awadhalla/souq/internal/domain"
	"github.com/awadhalla/souq/internal/middleware"
	"github.com/awadhalla/souq/internal/service"
)

// WebhookHandler receives payment gateway callbacks. Settlement happens
// here, never in the checkout response path: a card order stays pending
// until the gateway confirms.
type WebhookHandler struct {
	provider billing.Provider
	webhooks service.WebhookService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(provider billing.Provider, webhooks service.WebhookService) *WebhookHandler {
	return &WebhookHandler{provider: provider, webhooks: webhooks}
}

// HandleStripe handles POST /webhooks/stripe.
//
// Stripe CLI testing:
//
//	stripe listen --forward-to localhost:8080/webhooks/stripe
//	stripe trigger checkout.session.completed
func (h *WebhookHandler) HandleStripe(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		ErrorResponse(w, r, domain.Invalid("webhook.stripe", "Error reading request body"))
		return
	}

	event, err := h.provider.ParseWebhookEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, billing.ErrInvalidSignature) {
			ErrorResponse(w, r, err)
			return
		}
		ErrorResponse(w, r, domain.Invalid("webhook.stripe", "Invalid webhook payload"))
		return
	}

	// A processing failure returns 500 so the gateway redelivers. The
	// idempotency claim is released on error, giving the retry a clean
	// second attempt.
	if err := h.webhooks.HandleEvent(r.Context(), event); err != nil {
		logger.Error("webhook processing failed",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err,
		)
		ErrorResponse(w, r, err)
		return
	}

	JSON(w, http.StatusOK, map[string]bool{"received": true})
}
