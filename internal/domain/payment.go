package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment records the settlement attempt for an order. At most one payment
// row exists per order; a retry replaces the gateway reference in place
// rather than appending a second row.
type Payment struct {
	ID            int64           `json:"id"`
	OrderID       int64           `json:"orderId"`
	UserID        int64           `json:"userId"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"paymentMethod"`
	TransactionID string          `json:"transactionId,omitempty"`

	// Details is an opaque bag of gateway references (session id, payment
	// intent id, customer email, ...). Stored as JSON, never interpreted
	// by business logic.
	Details map[string]any `json:"paymentDetails,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Tax is a configuration entity. At most one tax is current at any instant:
// the most recently created active tax whose applicability window contains
// now. Rate is a percentage (5 means 5%).
type Tax struct {
	ID             int64               `json:"id"`
	Name           string              `json:"name"`
	Rate           decimal.Decimal     `json:"rate"`
	MinimumAmount  decimal.Decimal     `json:"minimumAmount"`
	MaximumAmount  decimal.NullDecimal `json:"maximumAmount"`
	ApplicableFrom time.Time           `json:"applicableFrom"`
	ApplicableTo   *time.Time          `json:"applicableTo,omitempty"`
	Active         bool                `json:"isActive"`
	CreatedAt      time.Time           `json:"createdAt"`
}

// DeliveryPricing maps a delivery type to its flat fee.
type DeliveryPricing struct {
	ID     int64           `json:"id"`
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
}

// Notification is a fire-and-forget message to a user. Delivery failures
// are logged, never propagated.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
