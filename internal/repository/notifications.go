package repository

import (
	"context"
	"fmt"

	"github.com/awadhalla/souq/internal/domain"
)

func (p *Postgres) CreateNotification(ctx context.Context, arg CreateNotificationParams) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO notifications (user_id, title, message)
		VALUES ($1, $2, $3)`, arg.UserID, arg.Title, arg.Message)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (p *Postgres) ListNotificationsByUser(ctx context.Context, userID int64) ([]domain.Notification, error) {
	rows, err := p.db.Query(ctx, `
		SELECT id, user_id, title, message, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
