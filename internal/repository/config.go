package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/awadhalla/souq/internal/domain"
)

// CurrentTax returns the most recently created active tax whose
// applicability window contains now, or ErrNotFound when no tax applies.
func (p *Postgres) CurrentTax(ctx context.Context, now time.Time) (*domain.Tax, error) {
	t, err := scanTax(p.db.QueryRow(ctx, `
		SELECT id, name, rate, minimum_amount, maximum_amount,
		       applicable_from, applicable_to, active, created_at
		FROM taxes
		WHERE active
		  AND applicable_from <= $1
		  AND (applicable_to IS NULL OR applicable_to >= $1)
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, now))
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (p *Postgres) ListTaxes(ctx context.Context) ([]domain.Tax, error) {
	rows, err := p.db.Query(ctx, `
		SELECT id, name, rate, minimum_amount, maximum_amount,
		       applicable_from, applicable_to, active, created_at
		FROM taxes
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list taxes: %w", err)
	}
	defer rows.Close()

	var taxes []domain.Tax
	for rows.Next() {
		t, err := scanTax(rows)
		if err != nil {
			return nil, err
		}
		taxes = append(taxes, *t)
	}
	return taxes, rows.Err()
}

func (p *Postgres) CreateTax(ctx context.Context, arg CreateTaxParams) (*domain.Tax, error) {
	t := &domain.Tax{
		Name:           arg.Name,
		Rate:           arg.Rate,
		MinimumAmount:  arg.MinimumAmount,
		MaximumAmount:  arg.MaximumAmount,
		ApplicableFrom: arg.ApplicableFrom,
		ApplicableTo:   arg.ApplicableTo,
		Active:         arg.Active,
	}
	err := p.db.QueryRow(ctx, `
		INSERT INTO taxes (name, rate, minimum_amount, maximum_amount, applicable_from, applicable_to, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		arg.Name, arg.Rate, arg.MinimumAmount, arg.MaximumAmount,
		arg.ApplicableFrom, arg.ApplicableTo, arg.Active).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create tax: %w", err)
	}
	return t, nil
}

func (p *Postgres) DeliveryPricingByType(ctx context.Context, deliveryType string) (*domain.DeliveryPricing, error) {
	var d domain.DeliveryPricing
	err := p.db.QueryRow(ctx, `
		SELECT id, type, amount FROM delivery_pricing WHERE type = $1`, deliveryType).
		Scan(&d.ID, &d.Type, &d.Amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get delivery pricing: %w", err)
	}
	return &d, nil
}

func (p *Postgres) ListDeliveryPricing(ctx context.Context) ([]domain.DeliveryPricing, error) {
	rows, err := p.db.Query(ctx, `
		SELECT id, type, amount FROM delivery_pricing ORDER BY amount, type`)
	if err != nil {
		return nil, fmt.Errorf("list delivery pricing: %w", err)
	}
	defer rows.Close()

	var out []domain.DeliveryPricing
	for rows.Next() {
		var d domain.DeliveryPricing
		if err := rows.Scan(&d.ID, &d.Type, &d.Amount); err != nil {
			return nil, fmt.Errorf("scan delivery pricing: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (p *Postgres) UpsertDeliveryPricing(ctx context.Context, deliveryType string, amount decimal.Decimal) (*domain.DeliveryPricing, error) {
	d := &domain.DeliveryPricing{Type: deliveryType, Amount: amount}
	err := p.db.QueryRow(ctx, `
		INSERT INTO delivery_pricing (type, amount)
		VALUES ($1, $2)
		ON CONFLICT (type) DO UPDATE SET amount = EXCLUDED.amount
		RETURNING id`, deliveryType, amount).Scan(&d.ID)
	if err != nil {
		return nil, fmt.Errorf("upsert delivery pricing: %w", err)
	}
	return d, nil
}

func scanTax(row pgx.Row) (*domain.Tax, error) {
	var t domain.Tax
	err := row.Scan(&t.ID, &t.Name, &t.Rate, &t.MinimumAmount, &t.MaximumAmount,
		&t.ApplicableFrom, &t.ApplicableTo, &t.Active, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan tax: %w", err)
	}
	return &t, nil
}
