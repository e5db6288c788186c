// Package notify delivers fire-and-forget user notifications. Delivery is
// best effort: failures are logged and never fail the calling operation.
package notify

import (
	"context"
	"log/slog"

	"github.com/awadhalla/souq/internal/repository"
)

// Notifier sends a message to a user.
type Notifier interface {
	Notify(ctx context.Context, userID int64, title, message string)
}

// StoreNotifier persists notifications for in-app delivery.
type StoreNotifier struct {
	repo   repository.Querier
	logger *slog.Logger
}

var _ Notifier = (*StoreNotifier)(nil)

// NewStoreNotifier creates a database-backed notifier.
func NewStoreNotifier(repo repository.Querier, logger *slog.Logger) *StoreNotifier {
	return &StoreNotifier{repo: repo, logger: logger}
}

func (n *StoreNotifier) Notify(ctx context.Context, userID int64, title, message string) {
	err := n.repo.CreateNotification(ctx, repository.CreateNotificationParams{
		UserID:  userID,
		Title:   title,
		Message: message,
	})
	if err != nil {
		n.logger.Error("failed to store notification",
			"user_id", userID,
			"title", title,
			"error", err)
	}
}

// NopNotifier discards every notification. Used in tests.
type NopNotifier struct{}

var _ Notifier = (*NopNotifier)(nil)

func (NopNotifier) Notify(context.Context, int64, string, string) {}
