// Package repository defines the persistence contract for the store and its
// PostgreSQL implementation. Services depend on the Querier interface;
// handlers never touch this package directly.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/awadhalla/souq/internal/domain"
)

// ErrNotFound is returned by single-row lookups when no row matches. It is
// deliberately not a domain error; services translate it into one with the
// right resource name attached.
var ErrNotFound = errors.New("repository: not found")

// InsertCartItemParams creates one cart line.
type InsertCartItemParams struct {
	CartID      int64
	ProductID   int64
	Quantity    int
	VariationID string
	Snapshot    *domain.VariationSnapshot
}

// UpdateCartItemParams replaces a line's quantity and refreshes its snapshot.
type UpdateCartItemParams struct {
	ItemID   int64
	Quantity int
	Snapshot *domain.VariationSnapshot
}

// CreateOrderParams creates an order with its product lines and the initial
// status log entry in a single transaction.
type CreateOrderParams struct {
	UserID        int64
	DeliveryType  string
	DeliveryFee   decimal.Decimal
	SubTotal      decimal.Decimal
	TaxAmount     decimal.Decimal
	TotalAmount   decimal.Decimal
	PaymentMethod string
	PaymentStatus string
	ShippingAddr  domain.ShippingAddress
	ScheduledAt   *time.Time

	Products      []domain.OrderProduct
	InitialStatus string
	InitialNote   string
}

// UpsertPaymentParams records a settlement attempt. At most one payment row
// exists per order; a retry overwrites status, method and gateway details.
type UpsertPaymentParams struct {
	OrderID       int64
	UserID        int64
	Amount        decimal.Decimal
	Status        string
	PaymentMethod string
	TransactionID string
	Details       map[string]any
}

// CreateTaxParams creates a tax configuration row.
type CreateTaxParams struct {
	Name           string
	Rate           decimal.Decimal
	MinimumAmount  decimal.Decimal
	MaximumAmount  decimal.NullDecimal
	ApplicableFrom time.Time
	ApplicableTo   *time.Time
	Active         bool
}

// CreatePickDropParams creates a courier pick-drop request.
type CreatePickDropParams struct {
	UserID              int64
	SenderName          string
	SenderContact       string
	ReceiverName        string
	ReceiverContact     string
	ItemDescription     string
	ItemWeightKg        decimal.Decimal
	PreferredPickupTime *time.Time
}

// UpdatePickDropStatusParams moves a pick-drop to a new status, optionally
// assigning a rider.
type UpdatePickDropStatusParams struct {
	ID            int64
	Status        string
	AssignedRider string
}

// CreateNotificationParams records a message for a user.
type CreateNotificationParams struct {
	UserID  int64
	Title   string
	Message string
}

// Querier is the full persistence surface. Single-row lookups return
// ErrNotFound when nothing matches; list methods return empty slices.
type Querier interface {
	// Carts. FindCartsByUser returns all carts for the user ordered by
	// creation time then id, without items; duplicate repair relies on
	// that ordering.
	FindCartsByUser(ctx context.Context, userID int64) ([]domain.Cart, error)
	CreateCart(ctx context.Context, userID int64) (domain.Cart, error)
	DeleteCart(ctx context.Context, cartID int64) error
	GetCartItems(ctx context.Context, cartID int64) ([]domain.CartItem, error)
	InsertCartItem(ctx context.Context, arg InsertCartItemParams) (domain.CartItem, error)
	UpdateCartItem(ctx context.Context, arg UpdateCartItemParams) error
	DeleteCartItem(ctx context.Context, itemID int64) error
	ClearCartItems(ctx context.Context, cartID int64) error

	// Products are read-only here; catalog management is out of scope.
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)

	// Orders.
	CreateOrder(ctx context.Context, arg CreateOrderParams) (*domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context, filter domain.OrderFilter, page domain.Page) ([]domain.Order, int64, error)
	AppendOrderStatus(ctx context.Context, orderID int64, status, note string) (domain.OrderStatusEntry, error)
	SetOrderPaymentStatus(ctx context.Context, orderID int64, status string) error

	// Payments.
	UpsertPayment(ctx context.Context, arg UpsertPaymentParams) (*domain.Payment, error)
	GetPaymentByOrder(ctx context.Context, orderID int64) (*domain.Payment, error)
	ListPaymentsByUser(ctx context.Context, userID int64, page domain.Page) ([]domain.Payment, int64, error)

	// Tax and delivery configuration.
	CurrentTax(ctx context.Context, now time.Time) (*domain.Tax, error)
	ListTaxes(ctx context.Context) ([]domain.Tax, error)
	CreateTax(ctx context.Context, arg CreateTaxParams) (*domain.Tax, error)
	DeliveryPricingByType(ctx context.Context, deliveryType string) (*domain.DeliveryPricing, error)
	ListDeliveryPricing(ctx context.Context) ([]domain.DeliveryPricing, error)
	UpsertDeliveryPricing(ctx context.Context, deliveryType string, amount decimal.Decimal) (*domain.DeliveryPricing, error)

	// Pick-drop courier requests.
	CreatePickDrop(ctx context.Context, arg CreatePickDropParams) (*domain.PickDrop, error)
	GetPickDrop(ctx context.Context, id int64) (*domain.PickDrop, error)
	UpdatePickDropStatus(ctx context.Context, arg UpdatePickDropStatusParams) (*domain.PickDrop, error)
	ListPickDropsByUser(ctx context.Context, userID int64, page domain.Page) ([]domain.PickDrop, int64, error)

	// Notifications.
	CreateNotification(ctx context.Context, arg CreateNotificationParams) error
	ListNotificationsByUser(ctx context.Context, userID int64) ([]domain.Notification, error)
}

// Store is a Querier that can also serialize cart mutations. WithUserCartLock
// runs fn inside a transaction holding an exclusive advisory lock keyed by
// the user id, so concurrent read-modify-write cycles against one user's
// cart cannot interleave. A user has at most one live cart, which makes the
// user id the natural lock key and covers duplicate-cart repair too.
type Store interface {
	Querier
	WithUserCartLock(ctx context.Context, userID int64, fn func(Querier) error) error
}
