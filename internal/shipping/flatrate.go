package shipping

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/awadhalla/souq/internal/domain"
)

// FlatRateProvider serves a fixed in-memory fee table. Used in tests and as
// a fallback when the pricing table is empty.
type FlatRateProvider struct {
	fees map[string]decimal.Decimal
}

var _ Provider = (*FlatRateProvider)(nil)

// NewFlatRateProvider creates a provider from a delivery-type fee map.
func NewFlatRateProvider(fees map[string]decimal.Decimal) *FlatRateProvider {
	copied := make(map[string]decimal.Decimal, len(fees))
	for k, v := range fees {
		copied[k] = v
	}
	return &FlatRateProvider{fees: copied}
}

func (p *FlatRateProvider) Fee(_ context.Context, deliveryType string) (decimal.Decimal, error) {
	fee, ok := p.fees[deliveryType]
	if !ok {
		return decimal.Zero, nil
	}
	return fee, nil
}

func (p *FlatRateProvider) Options(_ context.Context) ([]domain.DeliveryPricing, error) {
	out := make([]domain.DeliveryPricing, 0, len(p.fees))
	for t, fee := range p.fees {
		out = append(out, domain.DeliveryPricing{Type: t, Amount: fee})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Amount.Equal(out[j].Amount) {
			return out[i].Amount.LessThan(out[j].Amount)
		}
		return out[i].Type < out[j].Type
	})
	return out, nil
}
