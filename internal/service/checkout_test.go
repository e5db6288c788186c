package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awadhalla/souq/internal/billing"
	"github.com/awadhalla/souq/internal/domain"
	"github.com/awadhalla/souq/internal/repository"
	"github.com/awadhalla/souq/internal/shipping"
	"github.com/awadhalla/souq/internal/tax"
)

func checkoutFixture(t *testing.T) (*fakeStore, *billing.MockProvider, *fakeNotifier, CheckoutService, CartService) {
	t.Helper()
	store := newFakeStore()
	carts := NewCartService(store)
	gateway := billing.NewMockProvider()
	notifier := &fakeNotifier{}

	ctx := context.Background()
	_, err := store.UpsertDeliveryPricing(ctx, domain.DeliveryStandard, dec("20"))
	require.NoError(t, err)
	_, err = store.CreateTax(ctx, repository.CreateTaxParams{
		Name:           "VAT",
		Rate:           dec("5"),
		ApplicableFrom: time.Now().Add(-time.Hour),
		Active:         true,
	})
	require.NoError(t, err)

	svc := NewCheckoutService(
		store,
		carts,
		gateway,
		shipping.NewStoreProvider(store),
		tax.NewStoreCalculator(store),
		notifier,
	)
	return store, gateway, notifier, svc, carts
}

func addr() domain.ShippingAddress {
	return domain.ShippingAddress{
		Name:         "Amina K",
		AddressLine1: "12 Corniche Rd",
		Emirate:      "Abu Dhabi",
		PhoneNumber:  "+971500000000",
	}
}

func TestCalculateSummary(t *testing.T) {
	ctx := context.Background()
	store, _, _, svc, carts := checkoutFixture(t)
	seedProduct(store, simpleProduct(1, "50.00", 10))

	_, err := carts.AddItem(ctx, testUser, AddItemParams{ProductID: 1, Quantity: 2})
	require.NoError(t, err)

	summary, err := svc.CalculateSummary(ctx, testUser, domain.DeliveryStandard)
	require.NoError(t, err)

	// 100 subtotal + 20 delivery + 5% tax on the subtotal = 125.
	assert.Equal(t, "100.00", summary.Subtotal.StringFixed(2))
	assert.Equal(t, "20.00", summary.DeliveryFee.StringFixed(2))
	assert.Equal(t, "5.00", summary.TaxAmount.StringFixed(2))
	assert.Equal(t, "125.00", summary.Total.StringFixed(2))

	require.Len(t, summary.Items, 1)
	assert.Equal(t, "100.00", summary.Items[0].LineTotal.StringFixed(2))
}

func TestCalculateSummaryUnknownDeliveryType(t *testing.T) {
	_, _, _, svc, _ := checkoutFixture(t)
	_, err := svc.CalculateSummary(context.Background(), testUser, "Drone")
	assert.ErrorIs(t, err, ErrInvalidDeliveryType)
}

func TestProcessCheckoutCashOnDelivery(t *testing.T) {
	ctx := context.Background()
	store, _, notifier, svc, carts := checkoutFixture(t)
	seedProduct(store, simpleProduct(1, "50.00", 10))

	_, err := carts.AddItem(ctx, testUser, AddItemParams{ProductID: 1, Quantity: 2})
	require.NoError(t, err)

	result, err := svc.ProcessCheckout(ctx, testUser, CheckoutParams{
		DeliveryType:  domain.DeliveryStandard,
		PaymentMethod: domain.PaymentMethodCashOnDelivery,
		ShippingAddr:  addr(),
	})
	require.NoError(t, err)

	order := result.Order
	assert.Equal(t, "125.00", order.TotalAmount.StringFixed(2))
	assert.Equal(t, domain.PaymentStatusPending, order.PaymentStatus)
	require.Len(t, order.StatusLog, 1)
	assert.Equal(t, domain.StatusOrderPlaced, order.StatusLog[0].Status)
	require.NotNil(t, result.Payment)
	assert.Equal(t, domain.PaymentStatusPending, result.Payment.Status)
	assert.Empty(t, result.PaymentURL)

	// Cash settles offline, so the cart clears immediately.
	cart, err := carts.GetCart(ctx, testUser)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	assert.Contains(t, notifier.titles(), "Order placed")
}

func TestProcessCheckoutCardKeepsCart(t *testing.T) {
	ctx := context.Background()
	store, gateway, _, svc, carts := checkoutFixture(t)
	seedProduct(store, simpleProduct(1, "50.00", 10))

	_, err := carts.AddItem(ctx, testUser, AddItemParams{ProductID: 1, Quantity: 2})
	require.NoError(t, err)

	result, err := svc.ProcessCheckout(ctx, testUser, CheckoutParams{
		DeliveryType:  domain.DeliveryStandard,
		PaymentMethod: domain.PaymentMethodCard,
		ShippingAddr:  addr(),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.PaymentURL)
	require.Len(t, gateway.Sessions(), 1)
	assert.Equal(t, result.Order.ID, gateway.Sessions()[0].OrderID)

	// The cart survives until the webhook confirms payment.
	cart, err := carts.GetCart(ctx, testUser)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestProcessCheckoutCardLineManifest(t *testing.T) {
	ctx := context.Background()
	store, gateway, _, svc, carts := checkoutFixture(t)
	seedProduct(store, simpleProduct(1, "50.00", 10))

	_, err := carts.AddItem(ctx, testUser, AddItemParams{ProductID: 1, Quantity: 2})
	require.NoError(t, err)

	_, err = svc.ProcessCheckout(ctx, testUser, CheckoutParams{
		DeliveryType:  domain.DeliveryStandard,
		PaymentMethod: domain.PaymentMethodCard,
		ShippingAddr:  addr(),
	})
	require.NoError(t, err)

	// One line per cart item at the effective unit price, then delivery fee
	// and tax as their own lines.
	require.Len(t, gateway.Sessions(), 1)
	lines := gateway.Sessions()[0].Lines
	require.Len(t, lines, 3)

	assert.Equal(t, "Product", lines[0].Name)
	assert.Equal(t, "50.00", lines[0].UnitPrice.StringFixed(2))
	assert.Equal(t, int64(2), lines[0].Quantity)

	assert.Equal(t, "Delivery fee", lines[1].Name)
	assert.Equal(t, "20.00", lines[1].UnitPrice.StringFixed(2))

	assert.Equal(t, "VAT", lines[2].Name)
	assert.Equal(t, "5.00", lines[2].UnitPrice.StringFixed(2))
}

func TestProcessCheckoutValidation(t *testing.T) {
	ctx := context.Background()
	store, _, _, svc, carts := checkoutFixture(t)
	seedProduct(store, simpleProduct(1, "50.00", 1))

	t.Run("empty cart", func(t *testing.T) {
		_, err := svc.ProcessCheckout(ctx, testUser, CheckoutParams{
			DeliveryType:  domain.DeliveryStandard,
			PaymentMethod: domain.PaymentMethodCashOnDelivery,
			ShippingAddr:  addr(),
		})
		assert.ErrorIs(t, err, ErrCartEmpty)
	})

	t.Run("scheduled delivery needs a time", func(t *testing.T) {
		_, err := svc.ProcessCheckout(ctx, testUser, CheckoutParams{
			DeliveryType:  domain.DeliveryScheduled,
			PaymentMethod: domain.PaymentMethodCashOnDelivery,
			ShippingAddr:  addr(),
		})
		assert.ErrorIs(t, err, ErrScheduleRequired)
	})

	t.Run("bad payment method", func(t *testing.T) {
		_, err := svc.ProcessCheckout(ctx, testUser, CheckoutParams{
			DeliveryType:  domain.DeliveryStandard,
			PaymentMethod: "barter",
			ShippingAddr:  addr(),
		})
		assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
	})

	t.Run("incomplete shipping address creates nothing", func(t *testing.T) {
		_, err := carts.AddItem(ctx, testUser, AddItemParams{ProductID: 1, Quantity: 1})
		require.NoError(t, err)
		defer func() { require.NoError(t, carts.ClearCart(ctx, testUser)) }()

		tests := []struct {
			name string
			addr domain.ShippingAddress
			want string
		}{
			{"empty address", domain.ShippingAddress{}, "name is required"},
			{"missing name", domain.ShippingAddress{AddressLine1: "12 Corniche Rd", Emirate: "Abu Dhabi", PhoneNumber: "+971500000000"}, "name is required"},
			{"missing line 1", domain.ShippingAddress{Name: "Amina K", Emirate: "Abu Dhabi", PhoneNumber: "+971500000000"}, "line 1 is required"},
			{"missing emirate", domain.ShippingAddress{Name: "Amina K", AddressLine1: "12 Corniche Rd", PhoneNumber: "+971500000000"}, "emirate is required"},
			{"missing phone", domain.ShippingAddress{Name: "Amina K", AddressLine1: "12 Corniche Rd", Emirate: "Abu Dhabi"}, "phone number is required"},
		}
		for _, tt := range tests {
			_, err := svc.ProcessCheckout(ctx, testUser, CheckoutParams{
				DeliveryType:  domain.DeliveryStandard,
				PaymentMethod: domain.PaymentMethodCashOnDelivery,
				ShippingAddr:  tt.addr,
			})
			assert.Equal(t, domain.EINVALID, domain.ErrorCode(err), tt.name)
			assert.Contains(t, domain.ErrorMessage(err), tt.want, tt.name)
		}
		assert.Empty(t, store.orders)
		assert.Empty(t, store.payments)
	})

	t.Run("stale cart fails validation", func(t *testing.T) {
		_, err := carts.AddItem(ctx, testUser, AddItemParams{ProductID: 1, Quantity: 1})
		require.NoError(t, err)
		p := store.products[1]
		p.Stock = 0
		store.products[1] = p

		_, err = svc.ProcessCheckout(ctx, testUser, CheckoutParams{
			DeliveryType:  domain.DeliveryStandard,
			PaymentMethod: domain.PaymentMethodCashOnDelivery,
			ShippingAddr:  addr(),
		})
		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	})
}

func TestCreatePaymentForOrderRetry(t *testing.T) {
	ctx := context.Background()
	store, gateway, _, svc, carts := checkoutFixture(t)
	seedProduct(store, simpleProduct(1, "50.00", 10))

	_, err := carts.AddItem(ctx, testUser, AddItemParams{ProductID: 1, Quantity: 1})
	require.NoError(t, err)
	first, err := svc.ProcessCheckout(ctx, testUser, CheckoutParams{
		DeliveryType:  domain.DeliveryStandard,
		PaymentMethod: domain.PaymentMethodCard,
		ShippingAddr:  addr(),
	})
	require.NoError(t, err)

	retry, err := svc.CreatePaymentForOrder(ctx, testUser, first.Order.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, retry.PaymentURL)
	assert.Len(t, gateway.Sessions(), 2)

	// Retries itemize from the stored order: subtotal, delivery fee, tax.
	lines := gateway.Sessions()[1].Lines
	require.Len(t, lines, 3)
	assert.Equal(t, "50.00", lines[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "Delivery fee", lines[1].Name)

	// Still exactly one payment row for the order.
	payment, err := store.GetPaymentByOrder(ctx, first.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, retry.Payment.ID, payment.ID)

	t.Run("wrong user", func(t *testing.T) {
		_, err := svc.CreatePaymentForOrder(ctx, testUser+1, first.Order.ID)
		assert.ErrorIs(t, err, ErrNotOrderOwner)
	})

	t.Run("already paid", func(t *testing.T) {
		require.NoError(t, store.SetOrderPaymentStatus(ctx, first.Order.ID, domain.PaymentStatusCompleted))
		_, err := svc.CreatePaymentForOrder(ctx, testUser, first.Order.ID)
		assert.ErrorIs(t, err, ErrOrderAlreadyPaid)
	})
}
