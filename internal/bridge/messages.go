package bridge

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/bezmoradi/gestured/internal/gesture"
)

// Message types on the wire.
const (
	TypeKey       = "key"
	TypeProximity = "proximity"
	TypeMapping   = "mapping"
	TypeAction    = "action"
	TypePulse     = "pulse"
	TypeHandled   = "handled"
)

// Message is every frame the bridge sends or receives. Only the fields that
// belong to Type are set.
type Message struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`

	// key, handled
	ScanCode int    `json:"scan_code,omitempty"`
	KeyUp    bool   `json:"key_up,omitempty"`
	Source   string `json:"source,omitempty"`
	Handled  bool   `json:"handled,omitempty"`

	// proximity
	Distance  float64 `json:"distance,omitempty"`
	MaxRange  float64 `json:"max_range,omitempty"`
	Timestamp int64   `json:"timestamp,omitempty"`

	// mapping; a missing or null array clears the mapping
	ScanCodes []int `json:"scan_codes,omitempty"`
	Actions   []int `json:"actions,omitempty"`

	// action
	Action   string `json:"action,omitempty"`
	ActionID int    `json:"action_id,omitempty"`
}

// Decode parses an inbound frame.
func Decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("decode bridge message: %w", err)
	}
	switch msg.Type {
	case TypeKey, TypeProximity, TypeMapping:
		return msg, nil
	case "":
		return Message{}, fmt.Errorf("bridge message has no type")
	}
	return Message{}, fmt.Errorf("unexpected bridge message type %q", msg.Type)
}

// Event converts a key message.
func (m Message) Event() gesture.Event {
	return gesture.Event{
		ScanCode: m.ScanCode,
		KeyUp:    m.KeyUp,
		Source:   gesture.ParseSource(m.Source),
	}
}

func actionMessage(action gesture.ActionID) Message {
	return Message{
		Type:     TypeAction,
		ID:       uuid.NewString(),
		Action:   action.String(),
		ActionID: int(action),
	}
}

func pulseMessage() Message {
	return Message{Type: TypePulse, ID: uuid.NewString()}
}

// handledMessage answers a key message, echoing its id when it had one.
func handledMessage(id string, ev gesture.Event, handled bool) Message {
	return Message{
		Type:     TypeHandled,
		ID:       id,
		ScanCode: ev.ScanCode,
		KeyUp:    ev.KeyUp,
		Handled:  handled,
	}
}
