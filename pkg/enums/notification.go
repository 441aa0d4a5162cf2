package enums

import "fmt"

// NotificationType classifies in-app notification rows.
type NotificationType string

const (
	NotificationTypeOrderUpdate   NotificationType = "order_update"
	NotificationTypeDeliveryAlert NotificationType = "delivery_alert"
	NotificationTypeSystem        NotificationType = "system"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeOrderUpdate,
	NotificationTypeDeliveryAlert,
	NotificationTypeSystem,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
