package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

// centsPerUnit converts a major-unit amount to the smallest currency unit.
var centsPerUnit = decimal.NewFromInt(100)

// StripeConfig holds Stripe provider configuration.
type StripeConfig struct {
	APIKey        string
	WebhookSecret string

	// Currency is the ISO 4217 code for all sessions, e.g. "aed".
	Currency string

	SuccessURL string
	CancelURL  string
}

// IsTestMode reports whether the configured key is a test-mode key.
func (c StripeConfig) IsTestMode() bool {
	return strings.HasPrefix(c.APIKey, "sk_test_")
}

// StripeProvider implements Provider using Stripe Checkout.
type StripeProvider struct {
	config StripeConfig
}

var _ Provider = (*StripeProvider)(nil)

// NewStripeProvider creates a Stripe-backed billing provider.
func NewStripeProvider(config StripeConfig) (*StripeProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("stripe API key is required")
	}
	if config.WebhookSecret == "" {
		return nil, fmt.Errorf("stripe webhook secret is required")
	}
	if config.Currency == "" {
		config.Currency = "aed"
	}
	stripe.Key = config.APIKey
	return &StripeProvider{config: config}, nil
}

// CreateCheckoutSession creates a one-time payment session. Amounts are
// converted to the currency's smallest unit as Stripe requires.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	currency := params.Currency
	if currency == "" {
		currency = p.config.Currency
	}

	lines := params.Lines
	if len(lines) == 0 {
		lines = []PaymentLine{{Name: params.Description, UnitPrice: params.Amount, Quantity: 1}}
	}
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(lines))
	for _, line := range lines {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(line.Name),
				},
				UnitAmount: stripe.Int64(line.UnitPrice.Mul(centsPerUnit).IntPart()),
			},
			Quantity: stripe.Int64(line.Quantity),
		})
	}

	sessionParams := &stripe.CheckoutSessionParams{
		Mode:      stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: lineItems,
		SuccessURL: stripe.String(p.config.SuccessURL + "?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(p.config.CancelURL),
		Metadata: map[string]string{
			"order_id": strconv.FormatInt(params.OrderID, 10),
			"user_id":  strconv.FormatInt(params.UserID, 10),
		},
	}
	if params.CustomerEmail != "" {
		sessionParams.CustomerEmail = stripe.String(params.CustomerEmail)
	}
	sessionParams.Context = ctx

	sess, err := session.New(sessionParams)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	out := &CheckoutSession{ID: sess.ID, URL: sess.URL}
	if sess.PaymentIntent != nil {
		out.PaymentIntentID = sess.PaymentIntent.ID
	}
	return out, nil
}

// ParseWebhookEvent verifies the signature and flattens checkout session
// events into the provider-neutral shape. Unknown event types come back
// with only ID and Type set.
func (p *StripeProvider) ParseWebhookEvent(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.config.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, ErrInvalidSignature
	}

	out := &WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if !strings.HasPrefix(out.Type, "checkout.session.") {
		return out, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("parse checkout session event: %w", err)
	}

	out.SessionID = sess.ID
	if sess.PaymentIntent != nil {
		out.PaymentIntentID = sess.PaymentIntent.ID
	}
	out.Paid = sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid
	if id, err := strconv.ParseInt(sess.Metadata["order_id"], 10, 64); err == nil {
		out.OrderID = id
	}
	if id, err := strconv.ParseInt(sess.Metadata["user_id"], 10, 64); err == nil {
		out.UserID = id
	}
	return out, nil
}
