package enums

import "fmt"

// EventType labels the domain events the notify worker consumes.
type EventType string

const (
	EventAbsenceRecorded       EventType = "absence.recorded"
	EventGradePosted           EventType = "grade.posted"
	EventPaymentConfirmed      EventType = "payment.confirmed"
	EventAnnouncementPublished EventType = "announcement.published"
)

var validEventTypes = []EventType{
	EventAbsenceRecorded,
	EventGradePosted,
	EventPaymentConfirmed,
	EventAnnouncementPublished,
}

// IsValid reports whether the value is a known EventType.
func (e EventType) IsValid() bool {
	for _, candidate := range validEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEventType converts raw input into an EventType.
func ParseEventType(value string) (EventType, error) {
	for _, candidate := range validEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
