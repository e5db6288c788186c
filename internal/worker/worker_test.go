package worker

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awadhalla/souq/internal/domain"
)

type stubOrders struct {
	orders  []domain.Order
	filter  domain.OrderFilter
	scanErr error
	expired []int64
}

func (s *stubOrders) Get(context.Context, int64, int64) (*domain.Order, error) {
	panic("not used")
}

func (s *stubOrders) History(_ context.Context, filter domain.OrderFilter, _ domain.Page) ([]domain.Order, domain.Pagination, error) {
	s.filter = filter
	if s.scanErr != nil {
		return nil, domain.Pagination{}, s.scanErr
	}
	return s.orders, domain.Pagination{}, nil
}

func (s *stubOrders) AppendStatus(context.Context, int64, string, string) (domain.OrderStatusEntry, error) {
	panic("not used")
}

func (s *stubOrders) UpdatePaymentStatus(_ context.Context, orderID int64, status string) (*domain.Order, error) {
	if status != domain.PaymentStatusFailed {
		panic("sweeper must only fail orders")
	}
	s.expired = append(s.expired, orderID)
	return &domain.Order{ID: orderID, PaymentStatus: status}, nil
}

func (s *stubOrders) Cancel(context.Context, int64, int64) (*domain.Order, error) {
	panic("not used")
}

func newTestSweeper(orders *stubOrders) *Sweeper {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewSweeper(orders, Config{MaxAge: time.Hour}, logger)
	s.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestSweepExpiresOnlyStaleCardOrders(t *testing.T) {
	cancelled := domain.Order{ID: 3, PaymentMethod: domain.PaymentMethodCard}
	cancelled.StatusLog = []domain.OrderStatusEntry{{Status: domain.StatusCancelled}}

	orders := &stubOrders{orders: []domain.Order{
		{ID: 1, PaymentMethod: domain.PaymentMethodCard},
		{ID: 2, PaymentMethod: domain.PaymentMethodCashOnDelivery},
		cancelled,
	}}
	s := newTestSweeper(orders)

	n := s.Sweep(context.Background())

	assert.Equal(t, 1, n)
	assert.Equal(t, []int64{1}, orders.expired)

	// The scan asks only for pending orders older than the cutoff.
	assert.Equal(t, domain.PaymentStatusPending, orders.filter.PaymentStatus)
	require.NotNil(t, orders.filter.To)
	assert.Equal(t, time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC), orders.filter.To.UTC())
}

func TestSweepSurvivesScanFailure(t *testing.T) {
	orders := &stubOrders{scanErr: context.DeadlineExceeded}
	s := newTestSweeper(orders)

	assert.Equal(t, 0, s.Sweep(context.Background()))
	assert.Empty(t, orders.expired)
}
