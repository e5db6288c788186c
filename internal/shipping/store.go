package shipping

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/awadhalla/souq/internal/domain"
	"github.com/awadhalla/souq/internal/repository"
)

// Source yields delivery pricing configuration. It is satisfied by
// repository.Querier.
type Source interface {
	DeliveryPricingByType(ctx context.Context, deliveryType string) (*domain.DeliveryPricing, error)
	ListDeliveryPricing(ctx context.Context) ([]domain.DeliveryPricing, error)
}

// StoreProvider resolves fees from the delivery_pricing table.
type StoreProvider struct {
	source Source
}

var _ Provider = (*StoreProvider)(nil)

// NewStoreProvider creates a database-backed delivery fee provider.
func NewStoreProvider(source Source) *StoreProvider {
	return &StoreProvider{source: source}
}

func (p *StoreProvider) Fee(ctx context.Context, deliveryType string) (decimal.Decimal, error) {
	d, err := p.source.DeliveryPricingByType(ctx, deliveryType)
	if errors.Is(err, repository.ErrNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return d.Amount, nil
}

func (p *StoreProvider) Options(ctx context.Context) ([]domain.DeliveryPricing, error) {
	return p.source.ListDeliveryPricing(ctx)
}
