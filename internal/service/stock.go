package service

import (
	"fmt"

	"github.com/awadhalla/souq/internal/domain"
)

// availableStock returns the purchasable units for a product line. A line
// with a variation draws from the variation's stock, not the product's.
func availableStock(p *domain.Product, v *domain.Variation) int {
	if v != nil {
		return v.Stock
	}
	return p.Stock
}

// checkStock verifies the requested quantity can be satisfied right now.
// Stock is only ever checked here, never decremented; fulfilment adjusts
// inventory out of band.
func checkStock(p *domain.Product, v *domain.Variation, quantity int) error {
	avail := availableStock(p, v)
	if quantity > avail {
		return domain.WrapError(ErrInsufficientStock, domain.ECONFLICT, "",
			fmt.Sprintf("Insufficient stock. Only %d available", avail))
	}
	return nil
}

// snapshotOf captures the display attributes of a variation at add time.
// Numeric fields are stored as strings to stay compatible with rows written
// by earlier clients.
func snapshotOf(v *domain.Variation) *domain.VariationSnapshot {
	if v == nil {
		return nil
	}
	snap := &domain.VariationSnapshot{
		Size:             v.Size,
		Color:            v.Color,
		SKU:              v.SKU,
		PriceAdjustment:  v.PriceAdjustment.String(),
		OnSale:           v.OnSale,
		StockAtTimeOfAdd: v.Stock,
	}
	if v.OriginalPriceAdjustment.Valid {
		snap.OriginalPriceAdjustment = v.OriginalPriceAdjustment.Decimal.String()
	}
	return snap
}
