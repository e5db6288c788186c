// Package billing integrates the payment gateway used for card checkouts.
package billing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/awadhalla/souq/internal/domain"
)

// Provider defines the interface for payment processing.
// Implementations: StripeProvider, MockProvider.
type Provider interface {
	// CreateCheckoutSession creates a hosted payment page for an order and
	// returns its gateway references. The order id and user id travel in
	// session metadata so the webhook can reconcile the payment.
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)

	// ParseWebhookEvent verifies a webhook payload's signature and maps it
	// to a provider-neutral event. Returns ErrInvalidSignature when the
	// payload cannot be authenticated.
	ParseWebhookEvent(payload []byte, signature string) (*WebhookEvent, error)
}

// ErrInvalidSignature marks a webhook payload that failed verification.
var ErrInvalidSignature = domain.Errorf(domain.EUNAUTHORIZED, "", "Invalid webhook signature")

// CheckoutParams describes the hosted session to create. Lines itemize the
// payment page; when empty, providers fall back to a single line for Amount
// labelled with Description.
type CheckoutParams struct {
	OrderID       int64
	UserID        int64
	Amount        decimal.Decimal
	Currency      string
	Description   string
	Lines         []PaymentLine
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

// PaymentLine is one display line on the hosted payment page: a cart item at
// its effective unit price, the delivery fee, or the tax amount.
type PaymentLine struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int64
}

// CheckoutSession is the created hosted payment page.
type CheckoutSession struct {
	ID              string
	URL             string
	PaymentIntentID string
}

// Webhook event types the reconciler reacts to. Any other type is
// acknowledged and ignored.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
	EventPaymentFailed     = "checkout.session.async_payment_failed"
)

// WebhookEvent is the provider-neutral view of a gateway notification.
type WebhookEvent struct {
	ID   string
	Type string

	SessionID       string
	PaymentIntentID string

	// OrderID and UserID come from session metadata; zero when the event
	// does not carry a session or the metadata is missing.
	OrderID int64
	UserID  int64

	// Paid reports whether the gateway considers the session settled.
	Paid bool
}
