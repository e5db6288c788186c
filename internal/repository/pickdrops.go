package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/awadhalla/souq/internal/domain"
)

func (p *Postgres) CreatePickDrop(ctx context.Context, arg CreatePickDropParams) (*domain.PickDrop, error) {
	pd := &domain.PickDrop{
		UserID:              arg.UserID,
		SenderName:          arg.SenderName,
		SenderContact:       arg.SenderContact,
		ReceiverName:        arg.ReceiverName,
		ReceiverContact:     arg.ReceiverContact,
		ItemDescription:     arg.ItemDescription,
		ItemWeightKg:        arg.ItemWeightKg,
		PreferredPickupTime: arg.PreferredPickupTime,
		Status:              domain.PickDropPending,
	}
	err := p.db.QueryRow(ctx, `
		INSERT INTO pick_drops (user_id, sender_name, sender_contact, receiver_name,
		                        receiver_contact, item_description, item_weight_kg,
		                        preferred_pickup_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		arg.UserID, arg.SenderName, arg.SenderContact, arg.ReceiverName,
		arg.ReceiverContact, arg.ItemDescription, arg.ItemWeightKg,
		arg.PreferredPickupTime, domain.PickDropPending).Scan(&pd.ID, &pd.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create pick-drop: %w", err)
	}
	return pd, nil
}

func (p *Postgres) GetPickDrop(ctx context.Context, id int64) (*domain.PickDrop, error) {
	return scanPickDrop(p.db.QueryRow(ctx, `
		SELECT id, user_id, sender_name, sender_contact, receiver_name, receiver_contact,
		       item_description, item_weight_kg, preferred_pickup_time, status,
		       COALESCE(assigned_rider, ''), created_at
		FROM pick_drops
		WHERE id = $1`, id))
}

func (p *Postgres) UpdatePickDropStatus(ctx context.Context, arg UpdatePickDropStatusParams) (*domain.PickDrop, error) {
	return scanPickDrop(p.db.QueryRow(ctx, `
		UPDATE pick_drops
		SET status = $2,
		    assigned_rider = COALESCE(NULLIF($3, ''), assigned_rider)
		WHERE id = $1
		RETURNING id, user_id, sender_name, sender_contact, receiver_name, receiver_contact,
		          item_description, item_weight_kg, preferred_pickup_time, status,
		          COALESCE(assigned_rider, ''), created_at`,
		arg.ID, arg.Status, arg.AssignedRider))
}

func (p *Postgres) ListPickDropsByUser(ctx context.Context, userID int64, page domain.Page) ([]domain.PickDrop, int64, error) {
	page = page.Normalize()

	var total int64
	if err := p.db.QueryRow(ctx, `SELECT count(*) FROM pick_drops WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count pick-drops: %w", err)
	}

	rows, err := p.db.Query(ctx, `
		SELECT id, user_id, sender_name, sender_contact, receiver_name, receiver_contact,
		       item_description, item_weight_kg, preferred_pickup_time, status,
		       COALESCE(assigned_rider, ''), created_at
		FROM pick_drops
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, userID, page.Size, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list pick-drops: %w", err)
	}
	defer rows.Close()

	var out []domain.PickDrop
	for rows.Next() {
		pd, err := scanPickDrop(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *pd)
	}
	return out, total, rows.Err()
}

func scanPickDrop(row pgx.Row) (*domain.PickDrop, error) {
	var pd domain.PickDrop
	err := row.Scan(&pd.ID, &pd.UserID, &pd.SenderName, &pd.SenderContact,
		&pd.ReceiverName, &pd.ReceiverContact, &pd.ItemDescription, &pd.ItemWeightKg,
		&pd.PreferredPickupTime, &pd.Status, &pd.AssignedRider, &pd.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan pick-drop: %w", err)
	}
	return &pd, nil
}
