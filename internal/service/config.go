package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/awadhalla/souq/internal/domain"
	"github.com/awadhalla/souq/internal/repository"
)

// ConfigService manages the pricing configuration consulted at checkout:
// tax windows and per-type delivery fees.
type ConfigService interface {
	ListTaxes(ctx context.Context) ([]domain.Tax, error)
	CreateTax(ctx context.Context, arg repository.CreateTaxParams) (*domain.Tax, error)
	ListDeliveryPricing(ctx context.Context) ([]domain.DeliveryPricing, error)
	UpsertDeliveryPricing(ctx context.Context, deliveryType string, amount decimal.Decimal) (*domain.DeliveryPricing, error)
}

type configService struct {
	repo repository.Querier
}

// NewConfigService creates a new ConfigService instance.
func NewConfigService(repo repository.Querier) ConfigService {
	return &configService{repo: repo}
}

func (s *configService) ListTaxes(ctx context.Context) ([]domain.Tax, error) {
	taxes, err := s.repo.ListTaxes(ctx)
	if err != nil {
		return nil, domain.Internal(err, "config.list_taxes", "failed to list taxes")
	}
	return taxes, nil
}

// CreateTax adds a tax window. Existing rows are never edited; superseding a
// rate means creating a new row, which checkout picks by recency.
func (s *configService) CreateTax(ctx context.Context, arg repository.CreateTaxParams) (*domain.Tax, error) {
	const op = "config.create_tax"
	if arg.Name == "" {
		return nil, domain.Invalid(op, "Tax name is required")
	}
	if arg.Rate.IsNegative() {
		return nil, domain.Invalid(op, "Tax rate cannot be negative")
	}
	if arg.MinimumAmount.IsNegative() {
		return nil, domain.Invalid(op, "Minimum amount cannot be negative")
	}
	if arg.ApplicableTo != nil && !arg.ApplicableTo.After(arg.ApplicableFrom) {
		return nil, domain.Invalid(op, "Applicable-to must be after applicable-from")
	}

	tax, err := s.repo.CreateTax(ctx, arg)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create tax")
	}
	return tax, nil
}

func (s *configService) ListDeliveryPricing(ctx context.Context) ([]domain.DeliveryPricing, error) {
	pricing, err := s.repo.ListDeliveryPricing(ctx)
	if err != nil {
		return nil, domain.Internal(err, "config.list_delivery_pricing", "failed to list delivery pricing")
	}
	return pricing, nil
}

func (s *configService) UpsertDeliveryPricing(ctx context.Context, deliveryType string, amount decimal.Decimal) (*domain.DeliveryPricing, error) {
	const op = "config.upsert_delivery_pricing"
	if !domain.ValidDeliveryType(deliveryType) {
		return nil, domain.WithOp(ErrInvalidDeliveryType, op)
	}
	if amount.IsNegative() {
		return nil, domain.Invalid(op, "Delivery fee cannot be negative")
	}

	pricing, err := s.repo.UpsertDeliveryPricing(ctx, deliveryType, amount)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to save delivery pricing")
	}
	return pricing, nil
}
