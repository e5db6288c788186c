package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/awadhalla/souq/internal/domain"
)

func (p *Postgres) FindCartsByUser(ctx context.Context, userID int64) ([]domain.Cart, error) {
	rows, err := p.db.Query(ctx, `
		SELECT id, user_id, created_at, updated_at
		FROM carts
		WHERE user_id = $1
		ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("find carts: %w", err)
	}
	defer rows.Close()

	var carts []domain.Cart
	for rows.Next() {
		var c domain.Cart
		if err := rows.Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan cart: %w", err)
		}
		carts = append(carts, c)
	}
	return carts, rows.Err()
}

func (p *Postgres) CreateCart(ctx context.Context, userID int64) (domain.Cart, error) {
	var c domain.Cart
	err := p.db.QueryRow(ctx, `
		INSERT INTO carts (user_id)
		VALUES ($1)
		RETURNING id, user_id, created_at, updated_at`, userID).
		Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("create cart: %w", err)
	}
	return c, nil
}

func (p *Postgres) DeleteCart(ctx context.Context, cartID int64) error {
	// cart_items rows go with it via ON DELETE CASCADE.
	if _, err := p.db.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

func (p *Postgres) GetCartItems(ctx context.Context, cartID int64) ([]domain.CartItem, error) {
	rows, err := p.db.Query(ctx, `
		SELECT id, cart_id, product_id, quantity, COALESCE(variation_id, ''), variation_details
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY id`, cartID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var (
			it      domain.CartItem
			details []byte
		)
		if err := rows.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.VariationID, &details); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		if len(details) > 0 {
			var snap domain.VariationSnapshot
			if err := unmarshalJSON(details, &snap); err != nil {
				return nil, err
			}
			it.Snapshot = &snap
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (p *Postgres) InsertCartItem(ctx context.Context, arg InsertCartItemParams) (domain.CartItem, error) {
	details, err := marshalJSON(arg.Snapshot)
	if err != nil {
		return domain.CartItem{}, err
	}
	it := domain.CartItem{
		CartID:      arg.CartID,
		ProductID:   arg.ProductID,
		Quantity:    arg.Quantity,
		VariationID: arg.VariationID,
		Snapshot:    arg.Snapshot,
	}
	err = p.db.QueryRow(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity, variation_id, variation_details)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		RETURNING id`,
		arg.CartID, arg.ProductID, arg.Quantity, arg.VariationID, details).Scan(&it.ID)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("insert cart item: %w", err)
	}
	return it, p.touchCart(ctx, arg.CartID)
}

func (p *Postgres) UpdateCartItem(ctx context.Context, arg UpdateCartItemParams) error {
	details, err := marshalJSON(arg.Snapshot)
	if err != nil {
		return err
	}
	var cartID int64
	err = p.db.QueryRow(ctx, `
		UPDATE cart_items
		SET quantity = $2, variation_details = $3
		WHERE id = $1
		RETURNING cart_id`, arg.ItemID, arg.Quantity, details).Scan(&cartID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	return p.touchCart(ctx, cartID)
}

func (p *Postgres) DeleteCartItem(ctx context.Context, itemID int64) error {
	var cartID int64
	err := p.db.QueryRow(ctx, `
		DELETE FROM cart_items WHERE id = $1 RETURNING cart_id`, itemID).Scan(&cartID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	return p.touchCart(ctx, cartID)
}

func (p *Postgres) ClearCartItems(ctx context.Context, cartID int64) error {
	if _, err := p.db.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear cart items: %w", err)
	}
	return p.touchCart(ctx, cartID)
}

func (p *Postgres) touchCart(ctx context.Context, cartID int64) error {
	if _, err := p.db.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, cartID); err != nil {
		return fmt.Errorf("touch cart: %w", err)
	}
	return nil
}
