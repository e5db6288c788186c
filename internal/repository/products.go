package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/awadhalla/souq/internal/domain"
)

// GetProduct loads a product with its variations ordered by position.
func (p *Postgres) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var pr domain.Product
	err := p.db.QueryRow(ctx, `
		SELECT id, title, slug, price, original_price, on_sale,
		       sale_start_date, sale_end_date, discount_percentage,
		       stock, has_variations, published, created_at
		FROM products
		WHERE id = $1`, id).Scan(
		&pr.ID, &pr.Title, &pr.Slug, &pr.Price, &pr.OriginalPrice, &pr.OnSale,
		&pr.SaleStartDate, &pr.SaleEndDate, &pr.DiscountPercentage,
		&pr.Stock, &pr.HasVariations, &pr.Published, &pr.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	rows, err := p.db.Query(ctx, `
		SELECT id, product_id, COALESCE(size, ''), COALESCE(color, ''), COALESCE(sku, ''),
		       price_adjustment, original_price_adjustment, on_sale, stock, position
		FROM variations
		WHERE product_id = $1
		ORDER BY position, id`, id)
	if err != nil {
		return nil, fmt.Errorf("get product variations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v domain.Variation
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Size, &v.Color, &v.SKU,
			&v.PriceAdjustment, &v.OriginalPriceAdjustment, &v.OnSale, &v.Stock, &v.Position); err != nil {
			return nil, fmt.Errorf("scan variation: %w", err)
		}
		pr.Variations = append(pr.Variations, v)
	}
	return &pr, rows.Err()
}
