package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/MarceloMarchiori/m3class-backend/pkg/enums"
)

func TestDecodeValidEnvelope(t *testing.T) {
	src := Envelope{
		Version:    1,
		EventID:    uuid.New(),
		Type:       enums.EventGradePosted,
		OccurredAt: time.Now().UTC(),
		Data:       json.RawMessage(`{"studentId":"abc"}`),
	}
	raw, err := json.Marshal(src)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	env, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.EventID != src.EventID {
		t.Fatalf("event id mismatch")
	}
	if env.Type != enums.EventGradePosted {
		t.Fatalf("unexpected type %s", env.Type)
	}
}

func TestDecodeRejectsUnknownType(t *testing.T) {
	raw := []byte(`{"version":1,"eventId":"` + uuid.NewString() + `","type":"orders.created","data":{}}`)
	if _, err := Decode(raw); err == nil {
		t.Fatal("expected unknown event type to fail")
	}
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	if _, err := Decode([]byte("{")); err == nil {
		t.Fatal("expected malformed json to fail")
	}
}
