package tax

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/awadhalla/souq/internal/domain"
	"github.com/awadhalla/souq/internal/repository"
)

// Source yields the tax configuration in force at a given instant. It is
// satisfied by repository.Querier.
type Source interface {
	CurrentTax(ctx context.Context, now time.Time) (*domain.Tax, error)
}

// StoreCalculator resolves the current tax configuration from the database.
// At most one tax applies at any instant: the most recently created active
// row whose applicability window contains now.
type StoreCalculator struct {
	source Source
}

var _ Calculator = (*StoreCalculator)(nil)

// NewStoreCalculator creates a database-backed tax calculator.
func NewStoreCalculator(source Source) *StoreCalculator {
	return &StoreCalculator{source: source}
}

// CalculateTax applies the current configuration's rules: amounts below the
// minimum threshold are untaxed, and the computed tax is capped at the
// configured maximum when one is set. No matching configuration means no
// tax, not an error.
func (c *StoreCalculator) CalculateTax(ctx context.Context, taxable decimal.Decimal, now time.Time) (Result, error) {
	t, err := c.source.CurrentTax(ctx, now)
	if errors.Is(err, repository.ErrNotFound) {
		return Result{Amount: decimal.Zero, Rate: decimal.Zero}, nil
	}
	if err != nil {
		return Result{}, err
	}

	if taxable.LessThan(t.MinimumAmount) {
		return Result{Amount: decimal.Zero, Rate: decimal.Zero, Name: t.Name}, nil
	}

	amount := taxable.Mul(t.Rate).Div(decimal.NewFromInt(100))
	if t.MaximumAmount.Valid && amount.GreaterThan(t.MaximumAmount.Decimal) {
		amount = t.MaximumAmount.Decimal
	}
	return Result{Amount: amount, Rate: t.Rate, Name: t.Name}, nil
}
