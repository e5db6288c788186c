package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/awadhalla/souq/internal/billing"
	"github.com/awadhalla/souq/internal/domain"
	"github.com/awadhalla/souq/internal/notify"
	"github.com/awadhalla/souq/internal/pricing"
	"github.com/awadhalla/souq/internal/repository"
	"github.com/awadhalla/souq/internal/shipping"
	"github.com/awadhalla/souq/internal/tax"
	"github.com/awadhalla/souq/internal/telemetry"
)

// CheckoutService orchestrates the cart-to-order conversion: validation,
// pricing, order creation and the payment handoff.
type CheckoutService interface {
	DeliveryOptions(ctx context.Context) ([]domain.DeliveryPricing, error)
	CalculateSummary(ctx context.Context, userID int64, deliveryType string) (*OrderSummary, error)
	ProcessCheckout(ctx context.Context, userID int64, arg CheckoutParams) (*CheckoutResult, error)
	CreatePaymentForOrder(ctx context.Context, userID, orderID int64) (*CheckoutResult, error)
}

// CheckoutParams describes one checkout request.
type CheckoutParams struct {
	DeliveryType  string
	PaymentMethod string
	ShippingAddr  domain.ShippingAddress
	ScheduledAt   *time.Time
	CustomerEmail string
}

// SummaryLine is one priced cart line in an order summary.
type SummaryLine struct {
	ProductID   int64           `json:"productId"`
	Title       string          `json:"title"`
	VariationID string          `json:"variationId,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

// OrderSummary decomposes the amount a checkout would charge right now.
// totalAmount = subTotal + deliveryFee + taxAmount, each rounded once.
type OrderSummary struct {
	Items       []SummaryLine   `json:"items"`
	Subtotal    decimal.Decimal `json:"subTotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	TaxAmount   decimal.Decimal `json:"taxAmount"`
	TaxRate     decimal.Decimal `json:"taxRate"`
	TaxName     string          `json:"taxName,omitempty"`
	Total       decimal.Decimal `json:"totalAmount"`
}

// CheckoutResult is the outcome of a successful checkout or payment retry.
// PaymentURL is set for card payments and points at the hosted gateway page.
type CheckoutResult struct {
	Order      *domain.Order   `json:"order"`
	Payment    *domain.Payment `json:"payment,omitempty"`
	PaymentURL string          `json:"paymentUrl,omitempty"`
}

type checkoutService struct {
	repo     repository.Store
	carts    CartService
	billing  billing.Provider
	shipping shipping.Provider
	tax      tax.Calculator
	notifier notify.Notifier
	now      func() time.Time
}

// NewCheckoutService creates a new CheckoutService instance.
func NewCheckoutService(
	repo repository.Store,
	carts CartService,
	billingProvider billing.Provider,
	shippingProvider shipping.Provider,
	taxCalculator tax.Calculator,
	notifier notify.Notifier,
) CheckoutService {
	return &checkoutService{
		repo:     repo,
		carts:    carts,
		billing:  billingProvider,
		shipping: shippingProvider,
		tax:      taxCalculator,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *checkoutService) DeliveryOptions(ctx context.Context) ([]domain.DeliveryPricing, error) {
	options, err := s.shipping.Options(ctx)
	if err != nil {
		return nil, domain.Internal(err, "checkout.delivery_options", "failed to list delivery options")
	}
	return options, nil
}

// CalculateSummary prices the current cart without creating anything.
func (s *checkoutService) CalculateSummary(ctx context.Context, userID int64, deliveryType string) (*OrderSummary, error) {
	const op = "checkout.summary"
	if !domain.ValidDeliveryType(deliveryType) {
		return nil, domain.WithOp(ErrInvalidDeliveryType, op)
	}
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, op, cart, deliveryType)
}

// ProcessCheckout validates the cart, prices it, creates the order and
// starts the payment. Cash on delivery settles offline and the cart clears
// immediately; card checkouts keep the cart until the gateway confirms
// payment through the webhook.
func (s *checkoutService) ProcessCheckout(ctx context.Context, userID int64, arg CheckoutParams) (*CheckoutResult, error) {
	const op = "checkout.process"

	if !domain.ValidDeliveryType(arg.DeliveryType) {
		return nil, domain.WithOp(ErrInvalidDeliveryType, op)
	}
	if !domain.ValidPaymentMethod(arg.PaymentMethod) {
		return nil, domain.WithOp(ErrInvalidPaymentMethod, op)
	}
	if arg.DeliveryType == domain.DeliveryScheduled && arg.ScheduledAt == nil {
		return nil, domain.WithOp(ErrScheduleRequired, op)
	}
	if msg := shippingAddressError(arg.ShippingAddr); msg != "" {
		return nil, domain.Invalid(op, msg)
	}

	validation, err := s.carts.ValidateForCheckout(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !validation.Valid {
		if len(validation.InvalidItems) == 0 {
			return nil, domain.WithOp(ErrCartEmpty, op)
		}
		return nil, domain.Invalid(op, validation.Message)
	}

	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary, err := s.summarize(ctx, op, cart, arg.DeliveryType)
	if err != nil {
		return nil, err
	}

	lines := make([]domain.OrderProduct, 0, len(cart.Items))
	for _, it := range cart.Items {
		lines = append(lines, domain.OrderProduct{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	order, err := s.repo.CreateOrder(ctx, repository.CreateOrderParams{
		UserID:        userID,
		DeliveryType:  arg.DeliveryType,
		DeliveryFee:   summary.DeliveryFee,
		SubTotal:      summary.Subtotal,
		TaxAmount:     summary.TaxAmount,
		TotalAmount:   summary.Total,
		PaymentMethod: arg.PaymentMethod,
		PaymentStatus: domain.PaymentStatusPending,
		ShippingAddr:  arg.ShippingAddr,
		ScheduledAt:   arg.ScheduledAt,
		Products:      lines,
		InitialStatus: domain.StatusOrderPlaced,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create order")
	}

	result, err := s.startPayment(ctx, op, order, summary, arg.CustomerEmail)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, userID, "Order placed",
		fmt.Sprintf("Order #%d was placed. Total: %s.", order.ID, summary.Total.StringFixed(2)))

	if m := telemetry.Business; m != nil {
		m.CheckoutCompleted.WithLabelValues(arg.PaymentMethod).Inc()
		m.OrdersCreated.WithLabelValues(arg.PaymentMethod).Inc()
		m.OrderValue.Observe(summary.Total.InexactFloat64())
	}
	return result, nil
}

// CreatePaymentForOrder retries the payment for an existing order, for
// example after an abandoned gateway session.
func (s *checkoutService) CreatePaymentForOrder(ctx context.Context, userID, orderID int64) (*CheckoutResult, error) {
	const op = "checkout.retry_payment"

	order, err := s.repo.GetOrder(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.WithOp(ErrOrderNotFound, op)
	}
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load order")
	}
	if order.UserID != userID {
		return nil, domain.WithOp(ErrNotOrderOwner, op)
	}
	if order.PaymentStatus == domain.PaymentStatusCompleted {
		return nil, domain.WithOp(ErrOrderAlreadyPaid, op)
	}
	if order.Cancelled() {
		return nil, domain.Conflict(op, "Order has been cancelled")
	}

	return s.startPayment(ctx, op, order, nil, "")
}

// startPayment records the settlement attempt and, for card payments,
// creates the hosted gateway session. The payment row is an upsert: one row
// per order, retries overwrite.
func (s *checkoutService) startPayment(ctx context.Context, op string, order *domain.Order, summary *OrderSummary, customerEmail string) (*CheckoutResult, error) {
	result := &CheckoutResult{Order: order}

	switch order.PaymentMethod {
	case domain.PaymentMethodCard:
		sess, err := s.billing.CreateCheckoutSession(ctx, billing.CheckoutParams{
			OrderID:       order.ID,
			UserID:        order.UserID,
			Amount:        order.TotalAmount,
			Description:   fmt.Sprintf("Order #%d", order.ID),
			Lines:         paymentLines(order, summary),
			CustomerEmail: customerEmail,
		})
		if err != nil {
			return nil, domain.WrapError(err, domain.EPAYMENT, op, "Failed to start payment")
		}
		payment, err := s.repo.UpsertPayment(ctx, repository.UpsertPaymentParams{
			OrderID:       order.ID,
			UserID:        order.UserID,
			Amount:        order.TotalAmount,
			Status:        domain.PaymentStatusPending,
			PaymentMethod: order.PaymentMethod,
			TransactionID: sess.PaymentIntentID,
			Details: map[string]any{
				"session_id":  sess.ID,
				"session_url": sess.URL,
			},
		})
		if err != nil {
			return nil, domain.Internal(err, op, "failed to record payment")
		}
		result.Payment = payment
		result.PaymentURL = sess.URL

	case domain.PaymentMethodCashOnDelivery:
		payment, err := s.repo.UpsertPayment(ctx, repository.UpsertPaymentParams{
			OrderID:       order.ID,
			UserID:        order.UserID,
			Amount:        order.TotalAmount,
			Status:        domain.PaymentStatusPending,
			PaymentMethod: order.PaymentMethod,
		})
		if err != nil {
			return nil, domain.Internal(err, op, "failed to record payment")
		}
		result.Payment = payment
		// Cash settles offline; nothing further will confirm the order,
		// so the cart clears now.
		if err := s.carts.ClearCart(ctx, order.UserID); err != nil {
			return nil, err
		}

	default:
		// Wallet methods have no gateway integration yet and settle
		// synchronously.
		payment, err := s.repo.UpsertPayment(ctx, repository.UpsertPaymentParams{
			OrderID:       order.ID,
			UserID:        order.UserID,
			Amount:        order.TotalAmount,
			Status:        domain.PaymentStatusCompleted,
			PaymentMethod: order.PaymentMethod,
		})
		if err != nil {
			return nil, domain.Internal(err, op, "failed to record payment")
		}
		result.Payment = payment
		if err := s.repo.SetOrderPaymentStatus(ctx, order.ID, domain.PaymentStatusCompleted); err != nil {
			return nil, domain.Internal(err, op, "failed to update payment status")
		}
		if _, err := s.repo.AppendOrderStatus(ctx, order.ID, domain.StatusProcessing, "Payment received"); err != nil {
			return nil, domain.Internal(err, op, "failed to append order status")
		}
		if err := s.carts.ClearCart(ctx, order.UserID); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// summarize prices a loaded cart for the given delivery type. Each monetary
// component is rounded once; tax applies to the subtotal only.
func (s *checkoutService) summarize(ctx context.Context, op string, cart *domain.Cart, deliveryType string) (*OrderSummary, error) {
	now := s.now()

	summary := &OrderSummary{}
	subtotal := decimal.Zero
	for _, it := range cart.Items {
		if it.Product == nil {
			continue
		}
		unit := lineUnitPrice(&it, now)
		lineTotal := unit.Mul(decimal.NewFromInt(int64(it.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		summary.Items = append(summary.Items, SummaryLine{
			ProductID:   it.ProductID,
			Title:       it.Product.Title,
			VariationID: it.VariationID,
			Quantity:    it.Quantity,
			UnitPrice:   unit,
			LineTotal:   pricing.Round2(lineTotal),
		})
	}
	summary.Subtotal = pricing.Round2(subtotal)

	fee, err := s.shipping.Fee(ctx, deliveryType)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to resolve delivery fee")
	}
	summary.DeliveryFee = pricing.Round2(fee)

	taxRes, err := s.tax.CalculateTax(ctx, summary.Subtotal, now)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to calculate tax")
	}
	summary.TaxAmount = pricing.Round2(taxRes.Amount)
	summary.TaxRate = taxRes.Rate
	summary.TaxName = taxRes.Name

	summary.Total = pricing.Round2(summary.Subtotal.Add(summary.DeliveryFee).Add(summary.TaxAmount))
	return summary, nil
}

// shippingAddressError returns the first missing required address field, or
// "" when the address is complete.
func shippingAddressError(a domain.ShippingAddress) string {
	switch {
	case a.Name == "":
		return "Shipping address name is required"
	case a.AddressLine1 == "":
		return "Shipping address line 1 is required"
	case a.Emirate == "":
		return "Shipping address emirate is required"
	case a.PhoneNumber == "":
		return "Shipping address phone number is required"
	}
	return ""
}

// paymentLines builds the hosted-session manifest: one line per cart item at
// its effective price, plus separate delivery fee and tax lines. Retries
// have no priced summary anymore, so the item lines collapse to the order
// subtotal.
func paymentLines(order *domain.Order, summary *OrderSummary) []billing.PaymentLine {
	var lines []billing.PaymentLine
	taxName := "Tax"
	if summary != nil {
		for _, it := range summary.Items {
			name := it.Title
			if it.VariationID != "" {
				name = fmt.Sprintf("%s (variation %s)", it.Title, it.VariationID)
			}
			lines = append(lines, billing.PaymentLine{
				Name:      name,
				UnitPrice: it.UnitPrice,
				Quantity:  int64(it.Quantity),
			})
		}
		if summary.TaxName != "" {
			taxName = summary.TaxName
		}
	} else {
		lines = append(lines, billing.PaymentLine{
			Name:      fmt.Sprintf("Order #%d items", order.ID),
			UnitPrice: order.SubTotal,
			Quantity:  1,
		})
	}
	if order.DeliveryFee.IsPositive() {
		lines = append(lines, billing.PaymentLine{Name: "Delivery fee", UnitPrice: order.DeliveryFee, Quantity: 1})
	}
	if order.TaxAmount.IsPositive() {
		lines = append(lines, billing.PaymentLine{Name: taxName, UnitPrice: order.TaxAmount, Quantity: 1})
	}
	return lines
}
