package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"notesfrais/internal/core"
)

// ModerationMessage announces that an approve or reject request was sent
// to the admin endpoint. It says nothing about whether the upstream
// accepted it; consumers reload the list to find out.
type ModerationMessage struct {
	ExpenseID int64                 `json:"expense_id"`
	Action    core.ModerationAction `json:"action"`
	Actor     string                `json:"actor,omitempty"`
	Timestamp time.Time             `json:"timestamp"`
}

// NewModerationMessage builds the wire form of ev.
func NewModerationMessage(ev core.ModerationEvent) *ModerationMessage {
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return &ModerationMessage{
		ExpenseID: ev.ExpenseID,
		Action:    ev.Action,
		Actor:     ev.Actor,
		Timestamp: ts.UTC(),
	}
}

// Event converts the message back to the domain type.
func (m *ModerationMessage) Event() core.ModerationEvent {
	return core.ModerationEvent{ExpenseID: m.ExpenseID, Action: m.Action, Actor: m.Actor, Timestamp: m.Timestamp}
}

func (m *ModerationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ModerationMessageFromJSON decodes and validates a message body.
func ModerationMessageFromJSON(data []byte) (*ModerationMessage, error) {
	var msg ModerationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ExpenseID <= 0 {
		return nil, errors.New("missing expense id")
	}
	if !msg.Action.Valid() {
		return nil, fmt.Errorf("unknown action %q", msg.Action)
	}
	return &msg, nil
}
