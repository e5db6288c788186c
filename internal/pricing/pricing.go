// Package pricing computes effective unit prices for products and
// variations. All functions are pure; sale windows are evaluated against a
// caller-supplied clock so the logic is testable.
package pricing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/awadhalla/souq/internal/domain"
)

// ProductPrice returns the effective unit price of a product at the given
// instant. While an on-sale window is active (start ≤ now ≤ end, either
// bound optional) the discounted price field applies; otherwise the
// original price applies, falling back to price when no original is set.
func ProductPrice(p *domain.Product, now time.Time) decimal.Decimal {
	if saleActive(p, now) {
		return p.Price
	}
	if p.OriginalPrice.Valid {
		return p.OriginalPrice.Decimal
	}
	return p.Price
}

// VariationAdjustment returns the effective price delta a variation adds to
// its product's effective price. The variation's own on-sale flag is
// independent of the product's sale window.
func VariationAdjustment(v *domain.Variation) decimal.Decimal {
	if v.OnSale {
		return v.PriceAdjustment
	}
	if v.OriginalPriceAdjustment.Valid {
		return v.OriginalPriceAdjustment.Decimal
	}
	return v.PriceAdjustment
}

// UnitPrice returns the effective per-unit price for a product line,
// including the variation adjustment when a variation is given.
func UnitPrice(p *domain.Product, v *domain.Variation, now time.Time) decimal.Decimal {
	price := ProductPrice(p, now)
	if v != nil {
		price = price.Add(VariationAdjustment(v))
	}
	return price
}

// DiscountAmount returns how much the active sale shaves off the original
// price, or zero when no sale applies.
func DiscountAmount(p *domain.Product, now time.Time) decimal.Decimal {
	if !saleActive(p, now) || !p.OriginalPrice.Valid {
		return decimal.Zero
	}
	d := p.OriginalPrice.Decimal.Sub(p.Price)
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Round2 rounds a monetary amount to two decimal places. Totals are rounded
// once, after summation, so per-item rounding error cannot compound.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ParseLenient converts a stored numeric string to a decimal. Legacy cart
// snapshots carry numbers as loosely-typed strings; anything that does not
// parse coerces to zero rather than failing the read.
func ParseLenient(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func saleActive(p *domain.Product, now time.Time) bool {
	if !p.OnSale {
		return false
	}
	if p.SaleStartDate != nil && now.Before(*p.SaleStartDate) {
		return false
	}
	if p.SaleEndDate != nil && now.After(*p.SaleEndDate) {
		return false
	}
	return true
}
