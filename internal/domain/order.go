package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Delivery types. Scheduled deliveries carry a requested date/time.
const (
	DeliveryStandard  = "Standard"
	DeliveryExpress   = "Express"
	DeliverySameDay   = "Same-Day"
	DeliveryNextDay   = "Next-Day"
	DeliveryScheduled = "Scheduled"
)

// Payment methods accepted at checkout. Card goes through the hosted
// gateway session; cash on delivery settles offline; the wallet methods are
// synchronous stub paths.
const (
	PaymentMethodCard           = "card"
	PaymentMethodPayPal         = "paypal"
	PaymentMethodApplePay       = "apple_pay"
	PaymentMethodGooglePay      = "google_pay"
	PaymentMethodCashOnDelivery = "cash_on_delivery"
)

// Payment statuses. Normal flow is pending → completed; failed and refunded
// are reachable from pending or processing.
const (
	PaymentStatusPending    = "pending"
	PaymentStatusProcessing = "processing"
	PaymentStatusCompleted  = "completed"
	PaymentStatusFailed     = "failed"
	PaymentStatusRefunded   = "refunded"
)

// Well-known shipping status log entries.
const (
	StatusOrderPlaced   = "Order Placed"
	StatusProcessing    = "Processing"
	StatusPaymentFailed = "Payment Failed"
	StatusCancelled     = "Cancelled"
)

// ValidDeliveryType reports whether t is a known delivery type.
func ValidDeliveryType(t string) bool {
	switch t {
	case DeliveryStandard, DeliveryExpress, DeliverySameDay,
		DeliveryNextDay, DeliveryScheduled:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether m is an accepted checkout method.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCard, PaymentMethodPayPal, PaymentMethodApplePay,
		PaymentMethodGooglePay, PaymentMethodCashOnDelivery:
		return true
	}
	return false
}

// ValidPaymentStatus reports whether s is a known payment status.
func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusProcessing, PaymentStatusCompleted,
		PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// ShippingAddress is the value object embedded in an order.
type ShippingAddress struct {
	Name         string `json:"name"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	Emirate      string `json:"emirate"`
	City         string `json:"city,omitempty"`
	PhoneNumber  string `json:"phoneNumber"`
	Notes        string `json:"notes,omitempty"`
}

// OrderProduct is a line on an order: product id plus quantity, snapshotted
// from the cart at creation. No live variation re-link is kept.
type OrderProduct struct {
	ID        int64 `json:"id"`
	OrderID   int64 `json:"-"`
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// OrderStatusEntry is one row of the append-only status log. Entries are
// never edited or removed.
type OrderStatusEntry struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"-"`
	Status    string    `json:"status"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"timestamp"`
}

// Order is immutable once created apart from its payment status and the
// append-only status log. totalAmount = subTotal + deliveryFee + taxAmount
// at creation time.
type Order struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"userId"`
	DeliveryType  string          `json:"deliveryType"`
	DeliveryFee   decimal.Decimal `json:"deliveryFee"`
	SubTotal      decimal.Decimal `json:"subTotal"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PaymentMethod string          `json:"paymentMethod"`
	PaymentStatus string          `json:"paymentStatus"`
	ShippingAddr  ShippingAddress `json:"shippingAddress"`
	ScheduledAt   *time.Time      `json:"scheduledDateTime,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`

	Products  []OrderProduct     `json:"products,omitempty"`
	StatusLog []OrderStatusEntry `json:"orderStatus,omitempty"`
}

// Cancelled reports whether the order has been cancelled. Cancellation is
// recorded as a "Cancelled" status log entry. The payment status is also
// forced to failed for parity with the legacy flow, so the status log is the
// source of truth here rather than the payment status.
func (o *Order) Cancelled() bool {
	for i := len(o.StatusLog) - 1; i >= 0; i-- {
		if o.StatusLog[i].Status == StatusCancelled {
			return true
		}
	}
	return false
}

// Cancellable reports whether the order may still be cancelled.
func (o *Order) Cancellable() bool {
	return o.PaymentStatus == PaymentStatusPending || o.PaymentStatus == PaymentStatusProcessing
}

// OrderFilter narrows order history queries.
type OrderFilter struct {
	UserID        *int64
	PaymentStatus string
	From          *time.Time
	To            *time.Time
	MinAmount     *decimal.Decimal
	MaxAmount     *decimal.Decimal
	// Search matches free text against the shipping address fields.
	Search string
}

// Page is a pagination request. Page numbers start at 1.
type Page struct {
	Number int
	Size   int
}

// Normalize clamps a page request to sane defaults.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 || p.Size > 100 {
		p.Size = 10
	}
	return p
}

// Offset returns the row offset for the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Pagination describes a returned page.
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	Total     int64 `json:"total"`
	PageCount int64 `json:"pageCount"`
}

// NewPagination computes result-page metadata.
func NewPagination(p Page, total int64) Pagination {
	count := total / int64(p.Size)
	if total%int64(p.Size) != 0 {
		count++
	}
	return Pagination{Page: p.Number, PageSize: p.Size, Total: total, PageCount: count}
}
