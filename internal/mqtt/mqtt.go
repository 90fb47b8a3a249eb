// Package mqtt publishes controller events to an MQTT broker.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/cellar-pump/internal/logic"
)

// Topic is the MQTT topic for pump events.
const Topic = "home/cellar/pump/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "home/cellar/pump/system"

// Publisher publishes events to MQTT. Implementations must not block the
// caller on the network.
type Publisher interface {
	// Publish queues a pump event stamped with wall-clock time ts.
	Publish(ts time.Time, event logic.Event) error

	// PublishSystem queues a system lifecycle event.
	PublishSystem(event SystemEvent) error

	// Close flushes what it can and disconnects.
	Close() error
}

// Nop discards everything. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(time.Time, logic.Event) error { return nil }
func (Nop) PublishSystem(SystemEvent) error      { return nil }
func (Nop) Close() error                         { return nil }
func (Nop) IsConnected() bool                    { return false }

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent is a lifecycle event (STARTUP, SHUTDOWN, HEARTBEAT, RECONNECTED).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string
	Reason     string // shutdown only, e.g. "SIGTERM"
	RawPayload []byte // pre-formatted payload; returned as is by FormatSystemPayload
	Retained   bool
}

// Payload is the pump event message.
type Payload struct {
	Pump PumpPayload `json:"pump"`
}

// PumpPayload contains the pump event details.
type PumpPayload struct {
	Timestamp string          `json:"timestamp"`
	Event     string          `json:"event"`
	UptimeMs  uint32          `json:"counter_ms"`
	Preset    PresetPayload   `json:"preset"`
	Reading   *ReadingPayload `json:"reading,omitempty"`
}

// PresetPayload describes the active preset.
type PresetPayload struct {
	Index           int    `json:"index"`
	Label           string `json:"label"`
	OnSeconds       int64  `json:"on_seconds"`
	IntervalSeconds int64  `json:"interval_seconds"`
}

// ReadingPayload is the cached sensor reading. Omitted until the first
// successful read.
type ReadingPayload struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
}

// FormatPayload creates the JSON payload for a pump event.
func FormatPayload(ts time.Time, event logic.Event) ([]byte, error) {
	p := PumpPayload{
		Timestamp: ts.UTC().Format(time.RFC3339),
		Event:     string(event.Type),
		UptimeMs:  uint32(event.At),
		Preset: PresetPayload{
			Index:           event.Index,
			Label:           event.Preset.Label,
			OnSeconds:       int64(event.Preset.OnDuration / time.Second),
			IntervalSeconds: int64(event.Preset.CycleInterval / time.Second),
		},
	}
	if event.Reading.Valid {
		p.Reading = &ReadingPayload{
			Temperature: event.Reading.Temperature,
			Humidity:    event.Reading.Humidity,
		}
	}
	return json.Marshal(Payload{Pump: p})
}

// SystemPayload is the message for simple system events that carry no
// status snapshot (LWT, RECONNECTED).
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
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	inner := SystemPayloadInner{
		Event:  event.Event,
		Reason: event.Reason,
	}
	if !event.Timestamp.IsZero() {
		inner.Timestamp = event.Timestamp.UTC().Format(time.RFC3339)
	}
	return json.Marshal(SystemPayload{System: inner})
}

// WillPayload is registered with the broker as the last will. It has no
// timestamp since it is fixed at connect time.
func WillPayload() []byte {
	data, _ := FormatSystemPayload(SystemEvent{Event: "SHUTDOWN", Reason: "MQTT_DISCONNECT"})
	return data
}
