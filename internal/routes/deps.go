package routes

import (
	"github.com/awadhalla/souq/internal/handler"
	"github.com/awadhalla/souq/internal/router"
)

// APIDeps contains the handlers for customer-facing API routes.
type APIDeps struct {
	Cart         *handler.CartHandler
	Checkout     *handler.CheckoutHandler
	Order        *handler.OrderHandler
	Payment      *handler.PaymentHandler
	PickDrop     *handler.PickDropHandler
	Notification *handler.NotificationHandler

	// CheckoutLimiter applies a stricter rate limit to the routes that
	// create orders and gateway sessions. Optional.
	CheckoutLimiter router.Middleware
}

// AdminDeps contains the handlers for back-office routes.
type AdminDeps struct {
	Order    *handler.OrderHandler
	PickDrop *handler.PickDropHandler
	Config   *handler.ConfigHandler
}

// WebhookDeps contains dependencies for webhook routes.
type WebhookDeps struct {
	Stripe *handler.WebhookHandler
}
