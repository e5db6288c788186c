package service

import (
	"context"
	"errors"

	"github.com/awadhalla/souq/internal/domain"
	"github.com/awadhalla/souq/internal/repository"
)

// PaymentService exposes read access to settlement records.
type PaymentService interface {
	GetByOrder(ctx context.Context, userID, orderID int64) (*domain.Payment, error)
	History(ctx context.Context, userID int64, page domain.Page) ([]domain.Payment, domain.Pagination, error)
}

type paymentService struct {
	repo repository.Querier
}

// NewPaymentService creates a new PaymentService instance.
func NewPaymentService(repo repository.Querier) PaymentService {
	return &paymentService{repo: repo}
}

func (s *paymentService) GetByOrder(ctx context.Context, userID, orderID int64) (*domain.Payment, error) {
	const op = "payment.get_by_order"
	payment, err := s.repo.GetPaymentByOrder(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.WithOp(ErrPaymentNotFound, op)
	}
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load payment")
	}
	if userID != 0 && payment.UserID != userID {
		return nil, domain.WithOp(ErrNotOrderOwner, op)
	}
	return payment, nil
}

func (s *paymentService) History(ctx context.Context, userID int64, page domain.Page) ([]domain.Payment, domain.Pagination, error) {
	const op = "payment.history"
	page = page.Normalize()
	payments, total, err := s.repo.ListPaymentsByUser(ctx, userID, page)
	if err != nil {
		return nil, domain.Pagination{}, domain.Internal(err, op, "failed to list payments")
	}
	return payments, domain.NewPagination(page, total), nil
}
