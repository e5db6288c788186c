package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/awadhalla/souq/internal/domain"
	"github.com/awadhalla/souq/internal/pricing"
	"github.com/awadhalla/souq/internal/repository"
)

// CartService provides business logic for shopping cart operations. Every
// mutation runs under a per-user lock so concurrent requests against the
// same cart serialize instead of interleaving their read-modify-write
// cycles.
type CartService interface {
	GetCart(ctx context.Context, userID int64) (*domain.Cart, error)
	AddItem(ctx context.Context, userID int64, arg AddItemParams) (*domain.Cart, error)
	UpdateItemQuantity(ctx context.Context, userID, productID int64, variationID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, productID int64) (*domain.Cart, error)
	RemoveSpecificItem(ctx context.Context, userID, productID int64, variationID string) (*domain.Cart, error)
	ClearCart(ctx context.Context, userID int64) error
	Totals(ctx context.Context, userID int64) (domain.CartTotals, error)
	ValidateForCheckout(ctx context.Context, userID int64) (domain.CartValidation, error)
}

// AddItemParams describes one add-to-cart request. Quantity is the desired
// total for the line: adding a product already in the cart replaces the
// line's quantity rather than incrementing it.
type AddItemParams struct {
	ProductID   int64
	Quantity    int
	VariationID string
}

type cartService struct {
	store repository.Store
	now   func() time.Time
}

// NewCartService creates a new CartService instance.
func NewCartService(store repository.Store) CartService {
	return &cartService{store: store, now: time.Now}
}

// getOrCreateCart returns the user's single cart, creating one lazily. When
// duplicates exist the earliest-created cart wins and the rest are removed.
func getOrCreateCart(ctx context.Context, q repository.Querier, userID int64) (domain.Cart, error) {
	carts, err := q.FindCartsByUser(ctx, userID)
	if err != nil {
		return domain.Cart{}, domain.Internal(err, "cart.get", "failed to load cart")
	}
	if len(carts) == 0 {
		cart, err := q.CreateCart(ctx, userID)
		if err != nil {
			return domain.Cart{}, domain.Internal(err, "cart.get", "failed to create cart")
		}
		return cart, nil
	}
	for _, dup := range carts[1:] {
		if err := q.DeleteCart(ctx, dup.ID); err != nil {
			return domain.Cart{}, domain.Internal(err, "cart.get", "failed to repair duplicate carts")
		}
	}
	return carts[0], nil
}

// loadCart fills a cart with its items and resolves each item's live
// product. Items whose product has been deleted keep a nil Product; readers
// decide whether to skip or report them.
func loadCart(ctx context.Context, q repository.Querier, cart domain.Cart) (*domain.Cart, error) {
	items, err := q.GetCartItems(ctx, cart.ID)
	if err != nil {
		return nil, domain.Internal(err, "cart.get", "failed to load cart items")
	}

	products := make(map[int64]*domain.Product)
	for i := range items {
		p, ok := products[items[i].ProductID]
		if !ok {
			p, err = q.GetProduct(ctx, items[i].ProductID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, domain.Internal(err, "cart.get", "failed to resolve cart product")
			}
			products[items[i].ProductID] = p
		}
		items[i].Product = p
	}
	cart.Items = items
	return &cart, nil
}

func (s *cartService) GetCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	var cart *domain.Cart
	err := s.store.WithUserCartLock(ctx, userID, func(q repository.Querier) error {
		base, err := getOrCreateCart(ctx, q, userID)
		if err != nil {
			return err
		}
		cart, err = loadCart(ctx, q, base)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *cartService) AddItem(ctx context.Context, userID int64, arg AddItemParams) (*domain.Cart, error) {
	const op = "cart.add_item"
	if arg.Quantity <= 0 {
		return nil, domain.WithOp(ErrInvalidQuantity, op)
	}

	var cart *domain.Cart
	err := s.store.WithUserCartLock(ctx, userID, func(q repository.Querier) error {
		base, err := getOrCreateCart(ctx, q, userID)
		if err != nil {
			return err
		}

		product, variation, err := s.resolveLine(ctx, q, op, arg.ProductID, arg.VariationID)
		if err != nil {
			return err
		}
		if err := checkStock(product, variation, arg.Quantity); err != nil {
			return domain.WithOp(err, op)
		}

		items, err := q.GetCartItems(ctx, base.ID)
		if err != nil {
			return domain.Internal(err, op, "failed to load cart items")
		}

		snap := snapshotOf(variation)
		if existing := findLine(items, arg.ProductID, arg.VariationID); existing != nil {
			// Replace, don't accumulate: the request states the desired
			// total quantity for the line.
			err = q.UpdateCartItem(ctx, repository.UpdateCartItemParams{
				ItemID:   existing.ID,
				Quantity: arg.Quantity,
				Snapshot: snap,
			})
		} else {
			_, err = q.InsertCartItem(ctx, repository.InsertCartItemParams{
				CartID:      base.ID,
				ProductID:   arg.ProductID,
				Quantity:    arg.Quantity,
				VariationID: arg.VariationID,
				Snapshot:    snap,
			})
		}
		if err != nil {
			return domain.Internal(err, op, "failed to write cart item")
		}

		cart, err = loadCart(ctx, q, base)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *cartService) UpdateItemQuantity(ctx context.Context, userID, productID int64, variationID string, quantity int) (*domain.Cart, error) {
	const op = "cart.update_quantity"
	if quantity <= 0 {
		// Zero or negative means the line should go away.
		return s.RemoveSpecificItem(ctx, userID, productID, variationID)
	}

	var cart *domain.Cart
	err := s.store.WithUserCartLock(ctx, userID, func(q repository.Querier) error {
		base, err := getOrCreateCart(ctx, q, userID)
		if err != nil {
			return err
		}
		items, err := q.GetCartItems(ctx, base.ID)
		if err != nil {
			return domain.Internal(err, op, "failed to load cart items")
		}
		line := findLine(items, productID, variationID)
		if line == nil {
			return domain.WithOp(ErrCartItemNotFound, op)
		}

		product, variation, err := s.resolveLine(ctx, q, op, productID, variationID)
		if err != nil {
			return err
		}
		if err := checkStock(product, variation, quantity); err != nil {
			return domain.WithOp(err, op)
		}

		if err := q.UpdateCartItem(ctx, repository.UpdateCartItemParams{
			ItemID:   line.ID,
			Quantity: quantity,
			Snapshot: snapshotOf(variation),
		}); err != nil {
			return domain.Internal(err, op, "failed to update cart item")
		}

		cart, err = loadCart(ctx, q, base)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem removes every line for the product regardless of variation.
// It is idempotent: removing a product that is not in the cart succeeds.
func (s *cartService) RemoveItem(ctx context.Context, userID, productID int64) (*domain.Cart, error) {
	const op = "cart.remove_item"

	var cart *domain.Cart
	err := s.store.WithUserCartLock(ctx, userID, func(q repository.Querier) error {
		base, err := getOrCreateCart(ctx, q, userID)
		if err != nil {
			return err
		}
		items, err := q.GetCartItems(ctx, base.ID)
		if err != nil {
			return domain.Internal(err, op, "failed to load cart items")
		}
		for _, it := range items {
			if it.ProductID != productID {
				continue
			}
			if err := q.DeleteCartItem(ctx, it.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
				return domain.Internal(err, op, "failed to remove cart item")
			}
		}
		cart, err = loadCart(ctx, q, base)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveSpecificItem removes exactly one line identified by product and
// variation. Unlike RemoveItem it fails when no such line exists.
func (s *cartService) RemoveSpecificItem(ctx context.Context, userID, productID int64, variationID string) (*domain.Cart, error) {
	const op = "cart.remove_specific_item"

	var cart *domain.Cart
	err := s.store.WithUserCartLock(ctx, userID, func(q repository.Querier) error {
		base, err := getOrCreateCart(ctx, q, userID)
		if err != nil {
			return err
		}
		items, err := q.GetCartItems(ctx, base.ID)
		if err != nil {
			return domain.Internal(err, op, "failed to load cart items")
		}
		line := findLine(items, productID, variationID)
		if line == nil {
			return domain.WithOp(ErrCartItemNotFound, op)
		}
		if err := q.DeleteCartItem(ctx, line.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return domain.Internal(err, op, "failed to remove cart item")
		}
		cart, err = loadCart(ctx, q, base)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *cartService) ClearCart(ctx context.Context, userID int64) error {
	const op = "cart.clear"
	return s.store.WithUserCartLock(ctx, userID, func(q repository.Querier) error {
		base, err := getOrCreateCart(ctx, q, userID)
		if err != nil {
			return err
		}
		if err := q.ClearCartItems(ctx, base.ID); err != nil {
			return domain.Internal(err, op, "failed to clear cart")
		}
		return nil
	})
}

func (s *cartService) Totals(ctx context.Context, userID int64) (domain.CartTotals, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return domain.CartTotals{}, err
	}
	return s.totalsOf(cart), nil
}

// totalsOf sums the cart using live prices. Lines whose product has been
// deleted are skipped. The subtotal is rounded once, after summation.
func (s *cartService) totalsOf(cart *domain.Cart) domain.CartTotals {
	now := s.now()
	var t domain.CartTotals
	subtotal := decimal.Zero
	for _, it := range cart.Items {
		if it.Product == nil {
			continue
		}
		unit := lineUnitPrice(&it, now)
		subtotal = subtotal.Add(unit.Mul(decimal.NewFromInt(int64(it.Quantity))))
		t.ItemCount++
		t.TotalItems += it.Quantity
	}
	t.Subtotal = pricing.Round2(subtotal)
	return t
}

func (s *cartService) ValidateForCheckout(ctx context.Context, userID int64) (domain.CartValidation, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return domain.CartValidation{}, err
	}
	return s.validate(cart), nil
}

// validate sweeps every item and accumulates failures instead of stopping
// at the first one, so the caller can report the whole picture.
func (s *cartService) validate(cart *domain.Cart) domain.CartValidation {
	if len(cart.Items) == 0 {
		return domain.CartValidation{Valid: false, Message: "Cart is empty"}
	}

	var invalid []domain.InvalidCartItem
	flag := func(item domain.CartItem, reason string) {
		invalid = append(invalid, domain.InvalidCartItem{Item: item, Reason: reason})
	}

	for _, it := range cart.Items {
		switch {
		case it.Product == nil:
			flag(it, "Product no longer exists")
		case !it.Product.Published:
			flag(it, "Product is no longer available")
		default:
			var variation *domain.Variation
			if it.VariationID != "" {
				variation = it.Product.FindVariation(it.VariationID)
				if variation == nil {
					flag(it, "Selected variation is no longer available")
					continue
				}
			}
			if avail := availableStock(it.Product, variation); it.Quantity > avail {
				flag(it, fmt.Sprintf("Insufficient stock. Only %d available", avail))
			}
		}
	}

	if len(invalid) > 0 {
		return domain.CartValidation{
			Valid:        false,
			InvalidItems: invalid,
			Message:      "Some items in your cart are no longer available",
		}
	}
	return domain.CartValidation{Valid: true, Message: "All items are valid"}
}

// resolveLine loads the product and resolves the requested variation,
// enforcing publication and variation-selection rules.
func (s *cartService) resolveLine(ctx context.Context, q repository.Querier, op string, productID int64, variationID string) (*domain.Product, *domain.Variation, error) {
	product, err := q.GetProduct(ctx, productID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, domain.WithOp(ErrProductNotFound, op)
	}
	if err != nil {
		return nil, nil, domain.Internal(err, op, "failed to load product")
	}
	if !product.Published {
		return nil, nil, domain.WithOp(ErrProductUnavailable, op)
	}

	var variation *domain.Variation
	if variationID != "" {
		variation = product.FindVariation(variationID)
		if variation == nil {
			return nil, nil, domain.WithOp(ErrVariationNotFound, op)
		}
	} else if product.HasVariations {
		return nil, nil, domain.WithOp(ErrVariationRequired, op)
	}
	return product, variation, nil
}

// lineUnitPrice prices one cart line from live data, falling back to the
// snapshot adjustment when the variation has since been removed from the
// product.
func lineUnitPrice(it *domain.CartItem, now time.Time) decimal.Decimal {
	var variation *domain.Variation
	if it.VariationID != "" {
		variation = it.Product.FindVariation(it.VariationID)
	}
	if variation != nil || it.VariationID == "" {
		return pricing.UnitPrice(it.Product, variation, now)
	}
	base := pricing.ProductPrice(it.Product, now)
	if it.Snapshot != nil {
		base = base.Add(pricing.ParseLenient(it.Snapshot.PriceAdjustment))
	}
	return base
}

func findLine(items []domain.CartItem, productID int64, variationID string) *domain.CartItem {
	for i := range items {
		if items[i].ProductID == productID && items[i].VariationID == variationID {
			return &items[i]
		}
	}
	return nil
}
