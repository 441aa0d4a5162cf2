package enums

import "fmt"

// OrderEventType names the committed transition an order event records.
type OrderEventType string

const (
	EventOrderCreated        OrderEventType = "order.created"
	EventOrderPaymentCleared OrderEventType = "order.payment_cleared"
	EventOrderPickupReady    OrderEventType = "order.pickup_ready"
	EventOrderAccepted       OrderEventType = "order.accepted"
	EventOrderRejected       OrderEventType = "order.rejected"
	EventOrderPickupVerified OrderEventType = "order.pickup_verified"
	EventOrderOutForDelivery OrderEventType = "order.out_for_delivery"
	EventOrderDelivered      OrderEventType = "order.delivered"
	EventOrderCancelled      OrderEventType = "order.cancelled"
	EventOrderReassigned     OrderEventType = "order.reassigned"
)

var validOrderEventTypes = []OrderEventType{
	EventOrderCreated,
	EventOrderPaymentCleared,
	EventOrderPickupReady,
	EventOrderAccepted,
	EventOrderRejected,
	EventOrderPickupVerified,
	EventOrderOutForDelivery,
	EventOrderDelivered,
	EventOrderCancelled,
	EventOrderReassigned,
}

// String implements fmt.Stringer.
func (o OrderEventType) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderEventType.
func (o OrderEventType) IsValid() bool {
	for _, candidate := range validOrderEventTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// EventTypeForStatus maps a committed fulfillment status to its event type.
func EventTypeForStatus(status FulfillmentStatus) (OrderEventType, error) {
	switch status {
	case FulfillmentStatusCreated:
		return EventOrderCreated, nil
	case FulfillmentStatusPaymentCleared:
		return EventOrderPaymentCleared, nil
	case FulfillmentStatusPickupReady:
		return EventOrderPickupReady, nil
	case FulfillmentStatusAccepted:
		return EventOrderAccepted, nil
	case FulfillmentStatusPickupVerified:
		return EventOrderPickupVerified, nil
	case FulfillmentStatusOutForDelivery:
		return EventOrderOutForDelivery, nil
	case FulfillmentStatusDelivered:
		return EventOrderDelivered, nil
	case FulfillmentStatusCancelled:
		return EventOrderCancelled, nil
	default:
		return "", fmt.Errorf("no event type for status %q", status)
	}
}
