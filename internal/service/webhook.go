package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/awadhalla/souq/internal/billing"
	"github.com/awadhalla/souq/internal/domain"
	"github.com/awadhalla/souq/internal/idempotency"
	"github.com/awadhalla/souq/internal/repository"
	"github.com/awadhalla/souq/internal/telemetry"
)

// WebhookService reconciles asynchronous gateway notifications with local
// order and payment state. The gateway retries deliveries, so every event
// is deduplicated by id and handlers are safe to re-run.
type WebhookService interface {
	HandleEvent(ctx context.Context, event *billing.WebhookEvent) error
}

type webhookService struct {
	repo   repository.Querier
	orders OrderService
	carts  CartService
	events idempotency.Store
	logger *slog.Logger
}

// NewWebhookService creates a new WebhookService instance.
func NewWebhookService(
	repo repository.Querier,
	orders OrderService,
	carts CartService,
	events idempotency.Store,
	logger *slog.Logger,
) WebhookService {
	return &webhookService{
		repo:   repo,
		orders: orders,
		carts:  carts,
		events: events,
		logger: logger,
	}
}

func (s *webhookService) HandleEvent(ctx context.Context, event *billing.WebhookEvent) error {
	const op = "webhook.handle_event"

	if m := telemetry.Business; m != nil {
		m.WebhookReceived.WithLabelValues(event.Type).Inc()
	}

	if event.ID != "" {
		claimed, err := s.events.Claim(ctx, event.ID)
		if err != nil {
			return domain.Internal(err, op, "failed to deduplicate event")
		}
		if !claimed {
			s.logger.Info("skipping duplicate webhook event", "event_id", event.ID, "type", event.Type)
			return nil
		}
	}

	err := s.dispatch(ctx, event)
	if err != nil && event.ID != "" {
		// Free the claim so the gateway's retry can reprocess.
		if relErr := s.events.Release(ctx, event.ID); relErr != nil {
			s.logger.Error("failed to release webhook claim", "event_id", event.ID, "error", relErr)
		}
	}
	if m := telemetry.Business; m != nil {
		if err != nil {
			m.WebhookFailed.WithLabelValues(event.Type).Inc()
		} else {
			m.WebhookProcessed.WithLabelValues(event.Type).Inc()
		}
	}
	return err
}

func (s *webhookService) dispatch(ctx context.Context, event *billing.WebhookEvent) error {
	switch event.Type {
	case billing.EventCheckoutCompleted:
		if !event.Paid {
			s.logger.Info("checkout session completed without payment", "event_id", event.ID, "session_id", event.SessionID)
			return nil
		}
		return s.settleOrder(ctx, event)
	case billing.EventCheckoutExpired, billing.EventPaymentFailed:
		return s.failOrder(ctx, event)
	default:
		s.logger.Debug("ignoring webhook event", "event_id", event.ID, "type", event.Type)
		return nil
	}
}

// settleOrder marks the order paid and clears the user's cart. Card
// checkouts leave the cart intact until this point; a duplicate settlement
// (already completed order) is acknowledged without side effects.
func (s *webhookService) settleOrder(ctx context.Context, event *billing.WebhookEvent) error {
	const op = "webhook.settle_order"

	if event.OrderID == 0 {
		s.logger.Error("webhook event carries no order reference", "event_id", event.ID, "session_id", event.SessionID)
		return nil
	}

	order, err := s.repo.GetOrder(ctx, event.OrderID)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("webhook references unknown order", "event_id", event.ID, "order_id", event.OrderID)
		return nil
	}
	if err != nil {
		return domain.Internal(err, op, "failed to load order")
	}
	if order.PaymentStatus == domain.PaymentStatusCompleted {
		s.logger.Info("order already settled", "order_id", order.ID, "event_id", event.ID)
		return nil
	}

	if _, err := s.repo.UpsertPayment(ctx, repository.UpsertPaymentParams{
		OrderID:       order.ID,
		UserID:        order.UserID,
		Amount:        order.TotalAmount,
		Status:        domain.PaymentStatusCompleted,
		PaymentMethod: order.PaymentMethod,
		TransactionID: event.PaymentIntentID,
		Details: map[string]any{
			"session_id": event.SessionID,
			"event_id":   event.ID,
		},
	}); err != nil {
		return domain.Internal(err, op, "failed to record payment")
	}

	if _, err := s.orders.UpdatePaymentStatus(ctx, order.ID, domain.PaymentStatusCompleted); err != nil {
		return err
	}

	return s.carts.ClearCart(ctx, order.UserID)
}

func (s *webhookService) failOrder(ctx context.Context, event *billing.WebhookEvent) error {
	const op = "webhook.fail_order"

	if event.OrderID == 0 {
		return nil
	}
	order, err := s.repo.GetOrder(ctx, event.OrderID)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("webhook references unknown order", "event_id", event.ID, "order_id", event.OrderID)
		return nil
	}
	if err != nil {
		return domain.Internal(err, op, "failed to load order")
	}
	if order.PaymentStatus == domain.PaymentStatusCompleted {
		// A late failure event never un-pays a settled order.
		return nil
	}

	if _, err := s.repo.UpsertPayment(ctx, repository.UpsertPaymentParams{
		OrderID:       order.ID,
		UserID:        order.UserID,
		Amount:        order.TotalAmount,
		Status:        domain.PaymentStatusFailed,
		PaymentMethod: order.PaymentMethod,
		TransactionID: event.PaymentIntentID,
		Details: map[string]any{
			"session_id": event.SessionID,
			"event_id":   event.ID,
		},
	}); err != nil {
		return domain.Internal(err, op, "failed to record payment")
	}

	_, err = s.orders.UpdatePaymentStatus(ctx, order.ID, domain.PaymentStatusFailed)
	return err
}
