package service

import (
	"context"

	"github.com/awadhalla/souq/internal/domain"
	"github.com/awadhalla/souq/internal/repository"
)

// NotificationService lists the in-app notifications written by the order,
// checkout and pick-drop flows.
type NotificationService interface {
	List(ctx context.Context, userID int64) ([]domain.Notification, error)
}

type notificationService struct {
	repo repository.Querier
}

// NewNotificationService creates a new NotificationService instance.
func NewNotificationService(repo repository.Querier) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) List(ctx context.Context, userID int64) ([]domain.Notification, error) {
	notifications, err := s.repo.ListNotificationsByUser(ctx, userID)
	if err != nil {
		return nil, domain.Internal(err, "notification.list", "failed to list notifications")
	}
	return notifications, nil
}
