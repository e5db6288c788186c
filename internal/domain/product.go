package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Catalog management lives outside this core;
// products are read-only here apart from being referenced by carts and
// orders. Stock is checked, never decremented, by cart and checkout logic.
type Product struct {
	ID                 int64
	Title              string
	Slug               string
	Price              decimal.Decimal
	OriginalPrice      decimal.NullDecimal
	OnSale             bool
	SaleStartDate      *time.Time
	SaleEndDate        *time.Time
	DiscountPercentage decimal.NullDecimal
	Stock              int
	HasVariations      bool
	Published          bool
	CreatedAt          time.Time

	// Variations is populated when the product is loaded for cart or
	// checkout work; ordered by position.
	Variations []Variation
}

// Variation is a purchasable sub-option of a product (size/colour) with its
// own stock and price adjustment relative to the product's base price.
type Variation struct {
	ID                      int64
	ProductID               int64
	Size                    string
	Color                   string
	SKU                     string
	PriceAdjustment         decimal.Decimal
	OriginalPriceAdjustment decimal.NullDecimal
	OnSale                  bool
	Stock                   int
	Position                int
}

// FindVariation returns the variation whose id matches the given
// string-typed cart reference, or nil. Cart items carry variation ids as
// strings (legacy wire contract), so matching is string-comparable.
func (p *Product) FindVariation(variationID string) *Variation {
	if variationID == "" {
		return nil
	}
	for i := range p.Variations {
		if VariationKey(p.Variations[i].ID) == variationID {
			return &p.Variations[i]
		}
	}
	return nil
}
