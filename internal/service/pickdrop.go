package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/awadhalla/souq/internal/domain"
	"github.com/awadhalla/souq/internal/notify"
	"github.com/awadhalla/souq/internal/pricing"
	"github.com/awadhalla/souq/internal/repository"
)

// Pick-drop pricing: a flat base charge plus a per-kilogram rate.
var (
	pickDropBaseFee  = decimal.NewFromInt(10)
	pickDropPerKgFee = decimal.NewFromInt(5)
)

// PickDropService manages courier pick-drop requests: point-to-point item
// deliveries priced by weight, independent of the product catalog.
type PickDropService interface {
	Quote(weightKg decimal.Decimal) (decimal.Decimal, error)
	Create(ctx context.Context, arg repository.CreatePickDropParams) (*domain.PickDrop, error)
	Get(ctx context.Context, userID, id int64) (*domain.PickDrop, error)
	UpdateStatus(ctx context.Context, id int64, status, assignedRider string) (*domain.PickDrop, error)
	History(ctx context.Context, userID int64, page domain.Page) ([]domain.PickDrop, domain.Pagination, error)
}

type pickDropService struct {
	repo     repository.Querier
	notifier notify.Notifier
}

// NewPickDropService creates a new PickDropService instance.
func NewPickDropService(repo repository.Querier, notifier notify.Notifier) PickDropService {
	return &pickDropService{repo: repo, notifier: notifier}
}

// Quote prices a pick-drop by weight: base fee plus per-kg rate.
func (s *pickDropService) Quote(weightKg decimal.Decimal) (decimal.Decimal, error) {
	if !weightKg.IsPositive() {
		return decimal.Zero, domain.WithOp(ErrInvalidWeight, "pickdrop.quote")
	}
	return pricing.Round2(pickDropBaseFee.Add(weightKg.Mul(pickDropPerKgFee))), nil
}

func (s *pickDropService) Create(ctx context.Context, arg repository.CreatePickDropParams) (*domain.PickDrop, error) {
	const op = "pickdrop.create"

	switch {
	case arg.SenderName == "" || arg.SenderContact == "":
		return nil, domain.Invalid(op, "Sender name and contact are required")
	case arg.ReceiverName == "" || arg.ReceiverContact == "":
		return nil, domain.Invalid(op, "Receiver name and contact are required")
	case arg.ItemDescription == "":
		return nil, domain.Invalid(op, "Item description is required")
	case !arg.ItemWeightKg.IsPositive():
		return nil, domain.WithOp(ErrInvalidWeight, op)
	}

	pd, err := s.repo.CreatePickDrop(ctx, arg)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create pick-drop request")
	}

	s.notifier.Notify(ctx, pd.UserID, "Pick-drop requested",
		fmt.Sprintf("Pick-drop request #%d was created and is pending confirmation.", pd.ID))
	return pd, nil
}

// Get returns one pick-drop. A non-zero userID restricts access to the
// request's owner.
func (s *pickDropService) Get(ctx context.Context, userID, id int64) (*domain.PickDrop, error) {
	const op = "pickdrop.get"
	pd, err := s.repo.GetPickDrop(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.WithOp(ErrPickDropNotFound, op)
	}
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load pick-drop request")
	}
	if userID != 0 && pd.UserID != userID {
		return nil, domain.Forbidden(op, "Pick-drop request belongs to another user")
	}
	return pd, nil
}

// UpdateStatus moves a request to a new status. Delivered and Cancelled are
// terminal.
func (s *pickDropService) UpdateStatus(ctx context.Context, id int64, status, assignedRider string) (*domain.PickDrop, error) {
	const op = "pickdrop.update_status"

	if !domain.ValidPickDropStatus(status) {
		return nil, domain.WithOp(ErrInvalidPickDropStatus, op)
	}
	current, err := s.Get(ctx, 0, id)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.PickDropDelivered || current.Status == domain.PickDropCancelled {
		return nil, domain.Conflict(op, fmt.Sprintf("Pick-drop request is already %s", current.Status))
	}

	pd, err := s.repo.UpdatePickDropStatus(ctx, repository.UpdatePickDropStatusParams{
		ID:            id,
		Status:        status,
		AssignedRider: assignedRider,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.WithOp(ErrPickDropNotFound, op)
	}
	if err != nil {
		return nil, domain.Internal(err, op, "failed to update pick-drop status")
	}

	s.notifier.Notify(ctx, pd.UserID, "Pick-drop update",
		fmt.Sprintf("Pick-drop request #%d is now %s.", pd.ID, pd.Status))
	return pd, nil
}

func (s *pickDropService) History(ctx context.Context, userID int64, page domain.Page) ([]domain.PickDrop, domain.Pagination, error) {
	const op = "pickdrop.history"
	page = page.Normalize()
	items, total, err := s.repo.ListPickDropsByUser(ctx, userID, page)
	if err != nil {
		return nil, domain.Pagination{}, domain.Internal(err, op, "failed to list pick-drop requests")
	}
	return items, domain.NewPagination(page, total), nil
}
