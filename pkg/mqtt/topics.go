// Package mqtt defines topic conventions used to publish bridge telemetry.
package mqtt

import (
	"fmt"
	"strings"
)

// Topic naming conventions for the bridge.
// Format: nexstar/{device}/{number}/{action}
const (
	// TopicPrefix is the root prefix for all bridge topics.
	TopicPrefix = "nexstar"

	// Device kinds.
	DeviceTelescope = "telescope"

	// Actions.
	ActionState  = "state"
	ActionHealth = "health"
	ActionWire   = "wire"
)

// TopicBuilder helps construct topic strings following conventions.
type TopicBuilder struct {
	parts []string
}

// NewTopicBuilder creates a new topic builder starting with the bridge prefix.
func NewTopicBuilder() *TopicBuilder {
	return &TopicBuilder{
		parts: []string{TopicPrefix},
	}
}

// Device adds a device kind and number segment.
func (tb *TopicBuilder) Device(kind string, number int) *TopicBuilder {
	tb.parts = append(tb.parts, kind, fmt.Sprintf("%d", number))
	return tb
}

// Action adds an action segment.
func (tb *TopicBuilder) Action(action string) *TopicBuilder {
	tb.parts = append(tb.parts, action)
	return tb
}

// Build constructs the final topic string.
func (tb *TopicBuilder) Build() string {
	return strings.Join(tb.parts, "/")
}

// TelescopeStateTopic returns the topic a telescope publishes state changes on.
func TelescopeStateTopic(deviceNumber int) string {
	return NewTopicBuilder().Device(DeviceTelescope, deviceNumber).Action(ActionState).Build()
}

// TelescopeHealthTopic returns the topic a telescope publishes health on.
func TelescopeHealthTopic(deviceNumber int) string {
	return NewTopicBuilder().Device(DeviceTelescope, deviceNumber).Action(ActionHealth).Build()
}

// ParseTopic extracts components from a topic string.
func ParseTopic(topic string) ([]string, error) {
	parts := strings.Split(topic, "/")
	if len(parts) < 2 || parts[0] != TopicPrefix {
		return nil, fmt.Errorf("invalid topic format: must start with %s", TopicPrefix)
	}
	return parts[1:], nil
}

// ValidateTopic checks if a topic follows bridge conventions.
func ValidateTopic(topic string) bool {
	parts := strings.Split(topic, "/")
	return len(parts) >= 3 && parts[0] == TopicPrefix
}
