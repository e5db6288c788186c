package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awadhalla/souq/internal/domain"
	"github.com/awadhalla/souq/internal/repository"
)

func seedOrder(t *testing.T, store *fakeStore, userID int64, paymentStatus string) *domain.Order {
	t.Helper()
	order, err := store.CreateOrder(context.Background(), repository.CreateOrderParams{
		UserID:        userID,
		DeliveryType:  domain.DeliveryStandard,
		DeliveryFee:   dec("20"),
		SubTotal:      dec("100"),
		TaxAmount:     dec("5"),
		TotalAmount:   dec("125"),
		PaymentMethod: domain.PaymentMethodCard,
		PaymentStatus: paymentStatus,
		ShippingAddr:  addr(),
		Products:      []domain.OrderProduct{{ProductID: 1, Quantity: 2}},
		InitialStatus: domain.StatusOrderPlaced,
	})
	require.NoError(t, err)
	return order
}

func TestOrderGetOwnership(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewOrderService(store, &fakeNotifier{})
	order := seedOrder(t, store, testUser, domain.PaymentStatusPending)

	got, err := svc.Get(ctx, testUser, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = svc.Get(ctx, testUser+1, order.ID)
	assert.ErrorIs(t, err, ErrNotOrderOwner)

	_, err = svc.Get(ctx, testUser, 999)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderHistoryFilters(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewOrderService(store, &fakeNotifier{})

	seedOrder(t, store, testUser, domain.PaymentStatusPending)
	seedOrder(t, store, testUser, domain.PaymentStatusCompleted)
	seedOrder(t, store, testUser+1, domain.PaymentStatusCompleted)

	user := testUser
	orders, pagination, err := svc.History(ctx, domain.OrderFilter{UserID: &user}, domain.Page{})
	require.NoError(t, err)
	assert.Len(t, orders, 2)
	assert.Equal(t, int64(2), pagination.Total)

	orders, _, err = svc.History(ctx, domain.OrderFilter{
		UserID:        &user,
		PaymentStatus: domain.PaymentStatusCompleted,
	}, domain.Page{})
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	min := dec("200")
	orders, _, err = svc.History(ctx, domain.OrderFilter{MinAmount: &min}, domain.Page{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestUpdatePaymentStatusSideEffects(t *testing.T) {
	ctx := context.Background()

	t.Run("completed pushes into fulfilment", func(t *testing.T) {
		store := newFakeStore()
		notifier := &fakeNotifier{}
		svc := NewOrderService(store, notifier)
		order := seedOrder(t, store, testUser, domain.PaymentStatusPending)

		updated, err := svc.UpdatePaymentStatus(ctx, order.ID, domain.PaymentStatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusCompleted, updated.PaymentStatus)
		require.Len(t, updated.StatusLog, 2)
		assert.Equal(t, domain.StatusProcessing, updated.StatusLog[1].Status)
		assert.Contains(t, notifier.titles(), "Payment received")
	})

	t.Run("failed flags the order", func(t *testing.T) {
		store := newFakeStore()
		notifier := &fakeNotifier{}
		svc := NewOrderService(store, notifier)
		order := seedOrder(t, store, testUser, domain.PaymentStatusPending)

		updated, err := svc.UpdatePaymentStatus(ctx, order.ID, domain.PaymentStatusFailed)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPaymentFailed, updated.StatusLog[1].Status)
		assert.Contains(t, notifier.titles(), "Payment failed")
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		store := newFakeStore()
		svc := NewOrderService(store, &fakeNotifier{})
		order := seedOrder(t, store, testUser, domain.PaymentStatusPending)

		_, err := svc.UpdatePaymentStatus(ctx, order.ID, "settled")
		assert.ErrorIs(t, err, ErrInvalidPaymentStatus)
	})
}

func TestCancelOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("pending order cancels", func(t *testing.T) {
		store := newFakeStore()
		notifier := &fakeNotifier{}
		svc := NewOrderService(store, notifier)
		order := seedOrder(t, store, testUser, domain.PaymentStatusPending)

		cancelled, err := svc.Cancel(ctx, testUser, order.ID)
		require.NoError(t, err)
		assert.True(t, cancelled.Cancelled())
		assert.Equal(t, domain.PaymentStatusFailed, cancelled.PaymentStatus)
		assert.Equal(t, domain.StatusCancelled, cancelled.StatusLog[len(cancelled.StatusLog)-1].Status)
		assert.Contains(t, notifier.titles(), "Order cancelled")
	})

	t.Run("completed order does not cancel", func(t *testing.T) {
		store := newFakeStore()
		svc := NewOrderService(store, &fakeNotifier{})
		order := seedOrder(t, store, testUser, domain.PaymentStatusCompleted)

		_, err := svc.Cancel(ctx, testUser, order.ID)
		assert.ErrorIs(t, err, ErrOrderNotCancellable)
	})

	t.Run("cancelling twice fails", func(t *testing.T) {
		store := newFakeStore()
		svc := NewOrderService(store, &fakeNotifier{})
		order := seedOrder(t, store, testUser, domain.PaymentStatusPending)

		_, err := svc.Cancel(ctx, testUser, order.ID)
		require.NoError(t, err)
		_, err = svc.Cancel(ctx, testUser, order.ID)
		assert.ErrorIs(t, err, ErrOrderNotCancellable)
	})

	t.Run("only the owner cancels", func(t *testing.T) {
		store := newFakeStore()
		svc := NewOrderService(store, &fakeNotifier{})
		order := seedOrder(t, store, testUser, domain.PaymentStatusPending)

		_, err := svc.Cancel(ctx, testUser+1, order.ID)
		assert.ErrorIs(t, err, ErrNotOrderOwner)
	})
}
