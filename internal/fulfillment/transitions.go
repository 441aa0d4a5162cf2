package fulfillment

import "github.com/bazarly/bazarly-backend/pkg/enums"

// allowedTransitions is the single source of truth for the order lifecycle.
// Cancellation is legal from every non-terminal state and is handled by
// canTransition directly rather than repeated per row.
var allowedTransitions = map[enums.FulfillmentStatus][]enums.FulfillmentStatus{
	enums.FulfillmentStatusCreated:        {enums.FulfillmentStatusPaymentCleared},
	enums.FulfillmentStatusPaymentCleared: {enums.FulfillmentStatusPickupReady, enums.FulfillmentStatusAccepted},
	enums.FulfillmentStatusPickupReady:    {enums.FulfillmentStatusAccepted},
	enums.FulfillmentStatusAccepted:       {enums.FulfillmentStatusPickupVerified, enums.FulfillmentStatusPickupReady},
	enums.FulfillmentStatusPickupVerified: {enums.FulfillmentStatusOutForDelivery, enums.FulfillmentStatusPickupReady},
	enums.FulfillmentStatusOutForDelivery: {enums.FulfillmentStatusDelivered},
}

// canTransition reports whether from -> to is a legal lifecycle edge.
func canTransition(from, to enums.FulfillmentStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if to == enums.FulfillmentStatusCancelled {
		return true
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
