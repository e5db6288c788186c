package tax

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// FixedRateCalculator applies a constant percentage with no thresholds.
// Useful for tests and single-jurisdiction deployments.
type FixedRateCalculator struct {
	rate decimal.Decimal
	name string
}

var _ Calculator = (*FixedRateCalculator)(nil)

// NewFixedRateCalculator creates a calculator applying rate percent.
func NewFixedRateCalculator(rate decimal.Decimal, name string) *FixedRateCalculator {
	return &FixedRateCalculator{rate: rate, name: name}
}

func (c *FixedRateCalculator) CalculateTax(_ context.Context, taxable decimal.Decimal, _ time.Time) (Result, error) {
	return Result{
		Amount: taxable.Mul(c.rate).Div(decimal.NewFromInt(100)),
		Rate:   c.rate,
		Name:   c.name,
	}, nil
}

// NoTaxCalculator always returns zero tax.
type NoTaxCalculator struct{}

var _ Calculator = (*NoTaxCalculator)(nil)

// NewNoTaxCalculator creates a calculator that never charges tax.
func NewNoTaxCalculator() *NoTaxCalculator {
	return &NoTaxCalculator{}
}

func (c *NoTaxCalculator) CalculateTax(_ context.Context, _ decimal.Decimal, _ time.Time) (Result, error) {
	return Result{Amount: decimal.Zero, Rate: decimal.Zero}, nil
}
