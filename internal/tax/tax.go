// Package tax computes the tax amount applied at checkout.
package tax

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Calculator defines the interface for tax calculation.
// Implementations: StoreCalculator, FixedRateCalculator, NoTaxCalculator.
type Calculator interface {
	// CalculateTax computes the tax owed on a taxable amount at the given
	// instant. The returned amount is unrounded; callers round totals once.
	CalculateTax(ctx context.Context, taxable decimal.Decimal, now time.Time) (Result, error)
}

// Result is the outcome of one tax calculation.
type Result struct {
	Amount decimal.Decimal

	// Rate is the applied percentage (5 means 5%). Zero when no tax
	// configuration matched.
	Rate decimal.Decimal

	// Name identifies the matched configuration, e.g. "VAT".
	Name string
}
