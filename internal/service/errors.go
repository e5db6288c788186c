package service

import (
	"github.com/awadhalla/souq/internal/domain"
)

// Cart errors
var (
	ErrCartEmpty         = domain.Errorf(domain.EINVALID, "", "Cart is empty")
	ErrCartItemNotFound  = domain.Errorf(domain.ENOTFOUND, "", "Item not found in cart")
	ErrInvalidQuantity   = domain.Errorf(domain.EINVALID, "", "Quantity must be greater than 0")
	ErrVariationRequired = domain.Errorf(domain.EINVALID, "", "This product requires a variation selection")
	ErrVariationNotFound = domain.Errorf(domain.ENOTFOUND, "", "Variation not found for this product")
)

// Product errors
var (
	ErrProductNotFound    = domain.Errorf(domain.ENOTFOUND, "", "Product not found")
	ErrProductUnavailable = domain.Errorf(domain.EUNAVAILABLE, "", "Product is not available for purchase")
	ErrInsufficientStock  = domain.Errorf(domain.ECONFLICT, "", "Insufficient stock")
)

// Order errors
var (
	ErrOrderNotFound       = domain.Errorf(domain.ENOTFOUND, "", "Order not found")
	ErrOrderNotCancellable = domain.Errorf(domain.ECONFLICT, "", "Order can no longer be cancelled")
	ErrOrderAlreadyPaid    = domain.Errorf(domain.ECONFLICT, "", "Order has already been paid")
	ErrInvalidDeliveryType = domain.Errorf(domain.EINVALID, "", "Unknown delivery type")
	ErrScheduleRequired    = domain.Errorf(domain.EINVALID, "", "Scheduled delivery requires a date and time")
)

// Payment errors
var (
	ErrInvalidPaymentMethod = domain.Errorf(domain.EINVALID, "", "Unsupported payment method")
	ErrInvalidPaymentStatus = domain.Errorf(domain.EINVALID, "", "Unknown payment status")
	ErrPaymentNotFound      = domain.Errorf(domain.ENOTFOUND, "", "Payment not found")
	ErrNotOrderOwner        = domain.Errorf(domain.EFORBIDDEN, "", "Order belongs to another user")
)

// Pick-drop errors
var (
	ErrPickDropNotFound      = domain.Errorf(domain.ENOTFOUND, "", "Pick-drop request not found")
	ErrInvalidPickDropStatus = domain.Errorf(domain.EINVALID, "", "Unknown pick-drop status")
	ErrInvalidWeight         = domain.Errorf(domain.EINVALID, "", "Item weight must be greater than 0")
)
