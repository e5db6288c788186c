package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/awadhalla/souq/internal/domain"
)

// withTx runs fn inside a transaction, or directly when p is already
// transaction-bound (inside WithUserCartLock).
func (p *Postgres) withTx(ctx context.Context, fn func(q *Postgres) error) error {
	if p.pool == nil {
		return fn(p)
	}
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Postgres{db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CreateOrder inserts the order, its product lines and the initial status
// log entry atomically.
func (p *Postgres) CreateOrder(ctx context.Context, arg CreateOrderParams) (*domain.Order, error) {
	addr, err := marshalJSON(arg.ShippingAddr)
	if err != nil {
		return nil, err
	}

	o := &domain.Order{
		UserID:        arg.UserID,
		DeliveryType:  arg.DeliveryType,
		DeliveryFee:   arg.DeliveryFee,
		SubTotal:      arg.SubTotal,
		TaxAmount:     arg.TaxAmount,
		TotalAmount:   arg.TotalAmount,
		PaymentMethod: arg.PaymentMethod,
		PaymentStatus: arg.PaymentStatus,
		ShippingAddr:  arg.ShippingAddr,
		ScheduledAt:   arg.ScheduledAt,
	}

	err = p.withTx(ctx, func(q *Postgres) error {
		err := q.db.QueryRow(ctx, `
			INSERT INTO orders (user_id, delivery_type, delivery_fee, sub_total,
			                    tax_amount, total_amount, payment_method, payment_status,
			                    shipping_address, scheduled_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id, created_at`,
			arg.UserID, arg.DeliveryType, arg.DeliveryFee, arg.SubTotal,
			arg.TaxAmount, arg.TotalAmount, arg.PaymentMethod, arg.PaymentStatus,
			addr, arg.ScheduledAt).Scan(&o.ID, &o.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for _, line := range arg.Products {
			op := domain.OrderProduct{OrderID: o.ID, ProductID: line.ProductID, Quantity: line.Quantity}
			err := q.db.QueryRow(ctx, `
				INSERT INTO order_products (order_id, product_id, quantity)
				VALUES ($1, $2, $3)
				RETURNING id`, o.ID, line.ProductID, line.Quantity).Scan(&op.ID)
			if err != nil {
				return fmt.Errorf("insert order product: %w", err)
			}
			o.Products = append(o.Products, op)
		}

		if arg.InitialStatus != "" {
			entry, err := q.AppendOrderStatus(ctx, o.ID, arg.InitialStatus, arg.InitialNote)
			if err != nil {
				return err
			}
			o.StatusLog = append(o.StatusLog, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (p *Postgres) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := p.scanOrderRow(p.db.QueryRow(ctx, `
		SELECT id, user_id, delivery_type, delivery_fee, sub_total, tax_amount,
		       total_amount, payment_method, payment_status, shipping_address,
		       scheduled_at, created_at
		FROM orders
		WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := p.loadOrderLines(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// ListOrders applies the filter and returns one page plus the total match
// count. Results are newest first.
func (p *Postgres) ListOrders(ctx context.Context, filter domain.OrderFilter, page domain.Page) ([]domain.Order, int64, error) {
	where, args := buildOrderFilter(filter)
	page = page.Normalize()

	var total int64
	if err := p.db.QueryRow(ctx, `SELECT count(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	args = append(args, page.Size, page.Offset())
	rows, err := p.db.Query(ctx, fmt.Sprintf(`
		SELECT id, user_id, delivery_type, delivery_fee, sub_total, tax_amount,
		       total_amount, payment_method, payment_status, shipping_address,
		       scheduled_at, created_at
		FROM orders%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := p.scanOrderRow(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for i := range orders {
		if err := p.loadOrderLines(ctx, &orders[i]); err != nil {
			return nil, 0, err
		}
	}
	return orders, total, nil
}

func (p *Postgres) AppendOrderStatus(ctx context.Context, orderID int64, status, note string) (domain.OrderStatusEntry, error) {
	e := domain.OrderStatusEntry{OrderID: orderID, Status: status, Note: note}
	err := p.db.QueryRow(ctx, `
		INSERT INTO order_status_log (order_id, status, note)
		VALUES ($1, $2, NULLIF($3, ''))
		RETURNING id, created_at`, orderID, status, note).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return domain.OrderStatusEntry{}, fmt.Errorf("append order status: %w", err)
	}
	return e, nil
}

func (p *Postgres) SetOrderPaymentStatus(ctx context.Context, orderID int64, status string) error {
	tag, err := p.db.Exec(ctx, `UPDATE orders SET payment_status = $2 WHERE id = $1`, orderID, status)
	if err != nil {
		return fmt.Errorf("set order payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) scanOrderRow(row pgx.Row) (*domain.Order, error) {
	var (
		o    domain.Order
		addr []byte
	)
	err := row.Scan(&o.ID, &o.UserID, &o.DeliveryType, &o.DeliveryFee, &o.SubTotal,
		&o.TaxAmount, &o.TotalAmount, &o.PaymentMethod, &o.PaymentStatus,
		&addr, &o.ScheduledAt, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}
	if err := unmarshalJSON(addr, &o.ShippingAddr); err != nil {
		return nil, err
	}
	return &o, nil
}

func (p *Postgres) loadOrderLines(ctx context.Context, o *domain.Order) error {
	rows, err := p.db.Query(ctx, `
		SELECT id, order_id, product_id, quantity
		FROM order_products
		WHERE order_id = $1
		ORDER BY id`, o.ID)
	if err != nil {
		return fmt.Errorf("get order products: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var op domain.OrderProduct
		if err := rows.Scan(&op.ID, &op.OrderID, &op.ProductID, &op.Quantity); err != nil {
			return fmt.Errorf("scan order product: %w", err)
		}
		o.Products = append(o.Products, op)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	logRows, err := p.db.Query(ctx, `
		SELECT id, order_id, status, COALESCE(note, ''), created_at
		FROM order_status_log
		WHERE order_id = $1
		ORDER BY created_at, id`, o.ID)
	if err != nil {
		return fmt.Errorf("get order status log: %w", err)
	}
	defer logRows.Close()
	for logRows.Next() {
		var e domain.OrderStatusEntry
		if err := logRows.Scan(&e.ID, &e.OrderID, &e.Status, &e.Note, &e.CreatedAt); err != nil {
			return fmt.Errorf("scan order status: %w", err)
		}
		o.StatusLog = append(o.StatusLog, e)
	}
	return logRows.Err()
}

func buildOrderFilter(f domain.OrderFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.UserID != nil {
		add("user_id = $%d", *f.UserID)
	}
	if f.PaymentStatus != "" {
		add("payment_status = $%d", f.PaymentStatus)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}
	if f.MinAmount != nil {
		add("total_amount >= $%d", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		add("total_amount <= $%d", *f.MaxAmount)
	}
	if f.Search != "" {
		add("shipping_address::text ILIKE $%d", "%"+f.Search+"%")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
