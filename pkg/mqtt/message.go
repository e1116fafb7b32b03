// Package mqtt defines message envelope structures for MQTT communication.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MessageType represents the type of message being published.
type MessageType string

const (
	// MessageTypeEvent represents a state-transition event (telescope
	// connected, slew commanded, tracking changed).
	MessageTypeEvent MessageType = "event"
	// MessageTypeStatus represents a periodic status report (health).
	MessageTypeStatus MessageType = "status"
)

// Message is the envelope structure for everything the bridge publishes.
// The bridge is publish-only: it never consumes commands off the broker, so
// there are no request/response message types.
type Message struct {
	// ID is a unique identifier for this message
	ID string `json:"id"`
	// Type indicates the message type
	Type MessageType `json:"type"`
	// Source identifies the publisher (e.g., "nexstar-alpacad:telescope/0")
	Source string `json:"source"`
	// Timestamp when the message was created
	Timestamp time.Time `json:"timestamp"`
	// Payload contains the actual message data as JSON
	Payload json.RawMessage `json:"payload"`
}

// NewMessage creates a new message enveloping payload.
func NewMessage(msgType MessageType, source string, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Message{
		ID:        uuid.NewString(),
		Type:      msgType,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Payload:   payloadBytes,
	}, nil
}

// UnmarshalPayload deserializes the payload into the provided structure.
func (m *Message) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(m.Payload, v)
}
