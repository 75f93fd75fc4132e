package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/MarceloMarchiori/m3class-backend/pkg/enums"
)

// ActorRef identifies who produced the event.
type ActorRef struct {
	UserID   uuid.UUID  `json:"userId"`
	SchoolID *uuid.UUID `json:"schoolId,omitempty"`
	UserType string     `json:"userType,omitempty"`
}

// Envelope is the stable payload structure published on the school events topic.
type Envelope struct {
	Version    int             `json:"version"`
	EventID    uuid.UUID       `json:"eventId"`
	Type       enums.EventType `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	SchoolID   *uuid.UUID      `json:"schoolId,omitempty"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// Decode unmarshals the envelope body and validates its event type.
func Decode(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	if _, err := enums.ParseEventType(string(env.Type)); err != nil {
		return nil, err
	}
	return &env, nil
}
