// Package shipping resolves delivery fees for the checkout flow.
package shipping

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/awadhalla/souq/internal/domain"
)

// Provider defines the interface for delivery fee resolution.
// Implementations: StoreProvider (database-backed), FlatRateProvider.
type Provider interface {
	// Fee returns the flat fee for a delivery type. An unconfigured type
	// costs zero rather than failing the checkout.
	Fee(ctx context.Context, deliveryType string) (decimal.Decimal, error)

	// Options lists every configured delivery type with its fee, cheapest
	// first.
	Options(ctx context.Context) ([]domain.DeliveryPricing, error)
}
