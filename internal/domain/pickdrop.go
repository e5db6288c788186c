package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pick-drop statuses. A request moves Pending → Confirmed → Picked Up →
// Delivered, or to Cancelled from any non-terminal state.
const (
	PickDropPending   = "Pending"
	PickDropConfirmed = "Confirmed"
	PickDropPickedUp  = "Picked Up"
	PickDropDelivered = "Delivered"
	PickDropCancelled = "Cancelled"
)

// ValidPickDropStatus reports whether s is a known pick-drop status.
func ValidPickDropStatus(s string) bool {
	switch s {
	case PickDropPending, PickDropConfirmed, PickDropPickedUp,
		PickDropDelivered, PickDropCancelled:
		return true
	}
	return false
}

// PickDrop is a courier request: collect an item from a sender and deliver
// it to a receiver. Priced by weight, independent of the product catalog.
type PickDrop struct {
	ID                  int64           `json:"id"`
	UserID              int64           `json:"userId"`
	SenderName          string          `json:"senderName"`
	SenderContact       string          `json:"senderContact"`
	ReceiverName        string          `json:"receiverName"`
	ReceiverContact     string          `json:"receiverContact"`
	ItemDescription     string          `json:"itemDescription"`
	ItemWeightKg        decimal.Decimal `json:"itemWeight"`
	PreferredPickupTime *time.Time      `json:"preferredPickupTime,omitempty"`
	Status              string          `json:"pickDropStatus"`
	AssignedRider       string          `json:"assignedRider,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
}
