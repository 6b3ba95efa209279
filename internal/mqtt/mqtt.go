// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/motion-strip/internal/logic"
)

// Topic is the MQTT topic for controller events.
const Topic = "home/lighting/motion-strip/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "home/lighting/motion-strip/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a controller event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// Event is a controller event stamped with wall-clock time.
type Event struct {
	Timestamp time.Time
	Event     logic.Event
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT", "RECONNECTED"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Strip StripPayload `json:"strip"`
}

// StripPayload contains the controller event details.
type StripPayload struct {
	Timestamp    string `json:"timestamp"`
	Event        string `json:"event"`
	Millis       uint32 `json:"millis"`
	LightAverage int    `json:"light_average"`
	State        string `json:"state"`
	Detail       string `json:"detail,omitempty"`
}

// FormatPayload creates the JSON payload for a controller event.
func FormatPayload(event Event) ([]byte, error) {
	state := "OFF"
	if event.Event.StripOn {
		state = "ON"
	}
	payload := Payload{
		Strip: StripPayload{
			Timestamp:    event.Timestamp.UTC().Format(time.RFC3339),
			Event:        string(event.Event.Type),
			Millis:       event.Event.At,
			LightAverage: event.Event.Average,
			State:        state,
			Detail:       event.Event.Detail,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp,omitempty"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// WillPayload is the retained last-will message the broker publishes if
// the daemon disappears without a clean shutdown. It has no timestamp since
// it is registered at connect time.
func WillPayload() []byte {
	data, _ := json.Marshal(SystemPayload{System: SystemPayloadInner{Event: "OFFLINE", Reason: "LWT"}})
	return data
}
