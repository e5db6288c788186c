package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/awadhalla/souq/internal/domain"
	"github.com/awadhalla/souq/internal/notify"
	"github.com/awadhalla/souq/internal/repository"
	"github.com/awadhalla/souq/internal/telemetry"
)

// OrderService provides business logic for order lifecycle operations.
// Orders are immutable once placed apart from their payment status and the
// append-only status log.
type OrderService interface {
	Get(ctx context.Context, userID, orderID int64) (*domain.Order, error)
	History(ctx context.Context, filter domain.OrderFilter, page domain.Page) ([]domain.Order, domain.Pagination, error)
	AppendStatus(ctx context.Context, orderID int64, status, note string) (domain.OrderStatusEntry, error)
	UpdatePaymentStatus(ctx context.Context, orderID int64, status string) (*domain.Order, error)
	Cancel(ctx context.Context, userID, orderID int64) (*domain.Order, error)
}

type orderService struct {
	repo     repository.Querier
	notifier notify.Notifier
}

// NewOrderService creates a new OrderService instance.
func NewOrderService(repo repository.Querier, notifier notify.Notifier) OrderService {
	return &orderService{repo: repo, notifier: notifier}
}

// Get returns one order. A non-zero userID restricts access to the order's
// owner; zero means the caller is trusted (admin surfaces).
func (s *orderService) Get(ctx context.Context, userID, orderID int64) (*domain.Order, error) {
	const op = "order.get"
	order, err := s.repo.GetOrder(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.WithOp(ErrOrderNotFound, op)
	}
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load order")
	}
	if userID != 0 && order.UserID != userID {
		return nil, domain.WithOp(ErrNotOrderOwner, op)
	}
	return order, nil
}

func (s *orderService) History(ctx context.Context, filter domain.OrderFilter, page domain.Page) ([]domain.Order, domain.Pagination, error) {
	const op = "order.history"
	page = page.Normalize()
	orders, total, err := s.repo.ListOrders(ctx, filter, page)
	if err != nil {
		return nil, domain.Pagination{}, domain.Internal(err, op, "failed to list orders")
	}
	return orders, domain.NewPagination(page, total), nil
}

func (s *orderService) AppendStatus(ctx context.Context, orderID int64, status, note string) (domain.OrderStatusEntry, error) {
	const op = "order.append_status"
	if status == "" {
		return domain.OrderStatusEntry{}, domain.Invalid(op, "status is required")
	}
	if _, err := s.Get(ctx, 0, orderID); err != nil {
		return domain.OrderStatusEntry{}, err
	}
	entry, err := s.repo.AppendOrderStatus(ctx, orderID, status, note)
	if err != nil {
		return domain.OrderStatusEntry{}, domain.Internal(err, op, "failed to append order status")
	}
	return entry, nil
}

// UpdatePaymentStatus moves an order's payment status and applies the
// status-dependent side effects: a completed payment pushes the order into
// fulfilment, a failed one flags it for the customer. Both notify the user.
func (s *orderService) UpdatePaymentStatus(ctx context.Context, orderID int64, status string) (*domain.Order, error) {
	const op = "order.update_payment_status"
	if !domain.ValidPaymentStatus(status) {
		return nil, domain.WithOp(ErrInvalidPaymentStatus, op)
	}

	order, err := s.Get(ctx, 0, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetOrderPaymentStatus(ctx, orderID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.WithOp(ErrOrderNotFound, op)
		}
		return nil, domain.Internal(err, op, "failed to update payment status")
	}

	switch status {
	case domain.PaymentStatusCompleted:
		if _, err := s.repo.AppendOrderStatus(ctx, orderID, domain.StatusProcessing, "Payment received"); err != nil {
			return nil, domain.Internal(err, op, "failed to append order status")
		}
		s.notifier.Notify(ctx, order.UserID, "Payment received",
			fmt.Sprintf("Payment for order #%d was received. Your order is being processed.", orderID))
		if m := telemetry.Business; m != nil {
			m.PaymentSucceeded.WithLabelValues(order.PaymentMethod).Inc()
		}
	case domain.PaymentStatusFailed:
		if _, err := s.repo.AppendOrderStatus(ctx, orderID, domain.StatusPaymentFailed, ""); err != nil {
			return nil, domain.Internal(err, op, "failed to append order status")
		}
		s.notifier.Notify(ctx, order.UserID, "Payment failed",
			fmt.Sprintf("Payment for order #%d failed. Please try again.", orderID))
		if m := telemetry.Business; m != nil {
			m.PaymentFailed.WithLabelValues(order.PaymentMethod).Inc()
		}
	}

	return s.Get(ctx, 0, orderID)
}

// Cancel cancels an order while its payment is still pending or processing.
// Cancellation appends a log entry and forces the payment status to failed;
// the log entry is what marks the order cancelled.
func (s *orderService) Cancel(ctx context.Context, userID, orderID int64) (*domain.Order, error) {
	const op = "order.cancel"

	order, err := s.Get(ctx, userID, orderID)
	if err != nil {
		return nil, domain.WithOp(err, op)
	}
	if order.Cancelled() || !order.Cancellable() {
		return nil, domain.WithOp(ErrOrderNotCancellable, op)
	}

	if _, err := s.repo.AppendOrderStatus(ctx, orderID, domain.StatusCancelled, "Cancelled by customer"); err != nil {
		return nil, domain.Internal(err, op, "failed to append order status")
	}
	if err := s.repo.SetOrderPaymentStatus(ctx, orderID, domain.PaymentStatusFailed); err != nil {
		return nil, domain.Internal(err, op, "failed to update payment status")
	}

	s.notifier.Notify(ctx, order.UserID, "Order cancelled",
		fmt.Sprintf("Order #%d has been cancelled.", orderID))

	return s.Get(ctx, 0, orderID)
}
