package enums

import "fmt"

// FulfillmentStatus is the canonical lifecycle stage of an order. It is the
// single authoritative status; the per-gate records (assignment, pickup,
// delivery) only carry evidence.
type FulfillmentStatus string

const (
	FulfillmentStatusCreated        FulfillmentStatus = "created"
	FulfillmentStatusPaymentCleared FulfillmentStatus = "payment_cleared"
	FulfillmentStatusPickupReady    FulfillmentStatus = "pickup_ready"
	FulfillmentStatusAccepted       FulfillmentStatus = "accepted"
	FulfillmentStatusPickupVerified FulfillmentStatus = "pickup_verified"
	FulfillmentStatusOutForDelivery FulfillmentStatus = "out_for_delivery"
	FulfillmentStatusDelivered      FulfillmentStatus = "delivered"
	FulfillmentStatusCancelled      FulfillmentStatus = "cancelled"
)

var validFulfillmentStatuses = []FulfillmentStatus{
	FulfillmentStatusCreated,
	FulfillmentStatusPaymentCleared,
	FulfillmentStatusPickupReady,
	FulfillmentStatusAccepted,
	FulfillmentStatusPickupVerified,
	FulfillmentStatusOutForDelivery,
	FulfillmentStatusDelivered,
	FulfillmentStatusCancelled,
}

// String implements fmt.Stringer.
func (f FulfillmentStatus) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FulfillmentStatus.
func (f FulfillmentStatus) IsValid() bool {
	for _, candidate := range validFulfillmentStatuses {
		if candidate == f {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status accepts no further transitions.
func (f FulfillmentStatus) IsTerminal() bool {
	return f == FulfillmentStatusDelivered || f == FulfillmentStatusCancelled
}

// ParseFulfillmentStatus converts raw input into a FulfillmentStatus.
func ParseFulfillmentStatus(value string) (FulfillmentStatus, error) {
	for _, candidate := range validFulfillmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fulfillment status %q", value)
}
