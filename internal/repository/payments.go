package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/awadhalla/souq/internal/domain"
)

// UpsertPayment inserts the payment for an order, or overwrites the previous
// attempt in place. order_id carries a unique constraint, so a retry can
// never leave two settlement rows behind.
func (p *Postgres) UpsertPayment(ctx context.Context, arg UpsertPaymentParams) (*domain.Payment, error) {
	details, err := marshalJSON(arg.Details)
	if err != nil {
		return nil, err
	}
	pay := &domain.Payment{
		OrderID:       arg.OrderID,
		UserID:        arg.UserID,
		Amount:        arg.Amount,
		Status:        arg.Status,
		PaymentMethod: arg.PaymentMethod,
		TransactionID: arg.TransactionID,
		Details:       arg.Details,
	}
	err = p.db.QueryRow(ctx, `
		INSERT INTO payments (order_id, user_id, amount, status, payment_method, transaction_id, details)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
		ON CONFLICT (order_id) DO UPDATE SET
			amount         = EXCLUDED.amount,
			status         = EXCLUDED.status,
			payment_method = EXCLUDED.payment_method,
			transaction_id = EXCLUDED.transaction_id,
			details        = EXCLUDED.details,
			updated_at     = now()
		RETURNING id, created_at, updated_at`,
		arg.OrderID, arg.UserID, arg.Amount, arg.Status, arg.PaymentMethod,
		arg.TransactionID, details).
		Scan(&pay.ID, &pay.CreatedAt, &pay.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert payment: %w", err)
	}
	return pay, nil
}

func (p *Postgres) GetPaymentByOrder(ctx context.Context, orderID int64) (*domain.Payment, error) {
	return p.scanPayment(p.db.QueryRow(ctx, `
		SELECT id, order_id, user_id, amount, status, payment_method,
		       COALESCE(transaction_id, ''), details, created_at, updated_at
		FROM payments
		WHERE order_id = $1`, orderID))
}

func (p *Postgres) ListPaymentsByUser(ctx context.Context, userID int64, page domain.Page) ([]domain.Payment, int64, error) {
	page = page.Normalize()

	var total int64
	if err := p.db.QueryRow(ctx, `SELECT count(*) FROM payments WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	rows, err := p.db.Query(ctx, `
		SELECT id, order_id, user_id, amount, status, payment_method,
		       COALESCE(transaction_id, ''), details, created_at, updated_at
		FROM payments
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, userID, page.Size, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		pay, err := p.scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, *pay)
	}
	return payments, total, rows.Err()
}

func (p *Postgres) scanPayment(row pgx.Row) (*domain.Payment, error) {
	var (
		pay     domain.Payment
		details []byte
	)
	err := row.Scan(&pay.ID, &pay.OrderID, &pay.UserID, &pay.Amount, &pay.Status,
		&pay.PaymentMethod, &pay.TransactionID, &details, &pay.CreatedAt, &pay.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan payment: %w", err)
	}
	if len(details) > 0 {
		if err := unmarshalJSON(details, &pay.Details); err != nil {
			return nil, err
		}
	}
	return &pay, nil
}
