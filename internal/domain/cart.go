package domain

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Cart is a user's single mutable cart. Carts are created lazily on first
// access and never deleted, only cleared. A repair routine removes
// duplicate carts, keeping the earliest-created one.
type Cart struct {
	ID        int64
	UserID    int64
	CreatedAt time.Time
	UpdatedAt time.Time

	Items []CartItem
}

// CartItem is one line in a cart. The item always stores the product id and
// resolves live product data on read; Product is the resolved view and is
// nil only when the referenced product has been deleted underneath the cart.
type CartItem struct {
	ID          int64
	CartID      int64
	ProductID   int64
	Quantity    int
	VariationID string // empty when the line has no variation

	// Snapshot holds display-only variation attributes captured when the
	// item was added or last updated. Authoritative stock and price checks
	// always re-fetch the live product.
	Snapshot *VariationSnapshot

	Product *Product
}

// VariationSnapshot is the advisory copy of variation attributes stored on a
// cart item. Numeric fields are kept as strings because historical rows were
// written by clients with inconsistent typing; readers parse them leniently
// (non-numeric coerces to zero).
type VariationSnapshot struct {
	Size                    string `json:"size,omitempty"`
	Color                   string `json:"color,omitempty"`
	SKU                     string `json:"sku,omitempty"`
	PriceAdjustment         string `json:"price_adjustment,omitempty"`
	OriginalPriceAdjustment string `json:"original_price_adjustment,omitempty"`
	OnSale                  bool   `json:"on_sale"`
	StockAtTimeOfAdd        int    `json:"stock_at_time_of_add"`
}

// CartTotals aggregates a cart's computed amounts. Subtotal is rounded to
// two decimal places once, after summation.
type CartTotals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	ItemCount  int             `json:"itemCount"`  // distinct line items
	TotalItems int             `json:"totalItems"` // sum of quantities
}

// InvalidCartItem pairs a cart item with the reason it cannot be checked out.
type InvalidCartItem struct {
	Item   CartItem `json:"item"`
	Reason string   `json:"reason"`
}

// CartValidation is the result of a pre-checkout sweep over every item.
// Validation accumulates failures instead of stopping at the first one.
type CartValidation struct {
	Valid        bool              `json:"valid"`
	InvalidItems []InvalidCartItem `json:"invalidItems"`
	Message      string            `json:"message"`
}

// VariationKey renders a variation id in the string form cart items use.
func VariationKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
