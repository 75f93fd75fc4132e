package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeAbsence NotificationType = "absence"
	NotificationTypeGrade   NotificationType = "grade"
	NotificationTypePayment NotificationType = "payment"
	NotificationTypeGeneral NotificationType = "general"
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeSuccess NotificationType = "success"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeAbsence,
	NotificationTypeGrade,
	NotificationTypePayment,
	NotificationTypeGeneral,
	NotificationTypeInfo,
	NotificationTypeSuccess,
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
