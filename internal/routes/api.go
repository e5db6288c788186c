package routes

import (
	"github.com/awadhalla/souq/internal/middleware"
	"github.com/awadhalla/souq/internal/router"
)

// RegisterAPIRoutes registers the customer-facing API. Every route requires
// a valid bearer token; ownership checks happen in the services.
func RegisterAPIRoutes(r *router.Router, deps APIDeps) {
	api := r.Group(middleware.RequireAuth)

	// Cart
	api.Get("/api/v1/cart", deps.Cart.GetCart)
	api.Post("/api/v1/cart/items", deps.Cart.AddItem)
	api.Patch("/api/v1/cart/items", deps.Cart.UpdateQuantity)
	api.Delete("/api/v1/cart/items/{productID}", deps.Cart.RemoveItem)
	api.Post("/api/v1/cart/clear", deps.Cart.ClearCart)
	api.Get("/api/v1/cart/totals", deps.Cart.Totals)
	api.Get("/api/v1/cart/validate", deps.Cart.Validate)

	// Checkout
	api.Get("/api/v1/checkout/delivery-options", deps.Checkout.DeliveryOptions)
	api.Post("/api/v1/checkout/summary", deps.Checkout.Summary)
	if deps.CheckoutLimiter != nil {
		api.Post("/api/v1/checkout", deps.Checkout.Checkout, deps.CheckoutLimiter)
	} else {
		api.Post("/api/v1/checkout", deps.Checkout.Checkout)
	}

	// Orders
	api.Get("/api/v1/orders", deps.Order.List)
	api.Get("/api/v1/orders/{id}", deps.Order.Get)
	api.Post("/api/v1/orders/{id}/cancel", deps.Order.Cancel)
	api.Post("/api/v1/orders/{id}/payment", deps.Checkout.RetryPayment)
	api.Get("/api/v1/orders/{id}/payment", deps.Payment.GetByOrder)

	// Payments
	api.Get("/api/v1/payments", deps.Payment.History)

	// Pick-drop deliveries
	api.Post("/api/v1/pickdrops/quote", deps.PickDrop.Quote)
	api.Post("/api/v1/pickdrops", deps.PickDrop.Create)
	api.Get("/api/v1/pickdrops", deps.PickDrop.List)
	api.Get("/api/v1/pickdrops/{id}", deps.PickDrop.Get)

	// Notifications
	api.Get("/api/v1/notifications", deps.Notification.List)
}

// RegisterAdminRoutes registers the back-office API behind the admin role.
func RegisterAdminRoutes(r *router.Router, deps AdminDeps) {
	admin := r.Group(middleware.RequireAdmin)

	// Orders
	admin.Get("/api/v1/admin/orders", deps.Order.AdminList)
	admin.Get("/api/v1/admin/orders/{id}", deps.Order.AdminGet)
	admin.Post("/api/v1/admin/orders/{id}/status", deps.Order.AppendStatus)
	admin.Put("/api/v1/admin/orders/{id}/payment-status", deps.Order.UpdatePaymentStatus)

	// Pick-drop dispatch
	admin.Put("/api/v1/admin/pickdrops/{id}/status", deps.PickDrop.UpdateStatus)

	// Pricing configuration
	admin.Get("/api/v1/admin/taxes", deps.Config.ListTaxes)
	admin.Post("/api/v1/admin/taxes", deps.Config.CreateTax)
	admin.Get("/api/v1/admin/delivery-pricing", deps.Config.ListDeliveryPricing)
	admin.Put("/api/v1/admin/delivery-pricing", deps.Config.UpsertDeliveryPricing)
}
