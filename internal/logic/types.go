// Package logic contains the pump controller's cooperative state machines.
// Nothing in this package blocks or starts goroutines; every component is
// driven by the orchestrator with the current clock value.
package logic

import (
	"fmt"
	"time"
)

// Millis is a millisecond counter that wraps to zero after 2^32-1.
type Millis uint32

// Elapsed returns the time from ref to now using modular subtraction,
// so it stays correct across a counter wrap.
func Elapsed(now, ref Millis) Millis {
	return now - ref
}

// ToMillis converts d to a Millis duration.
func ToMillis(d time.Duration) Millis {
	return Millis(d / time.Millisecond)
}

// Clock supplies the current counter value.
type Clock interface {
	Now() Millis
}

// Relay drives the pump relay output. high = pump on.
type Relay interface {
	SetOutput(high bool) error
}

// ButtonInput reads the raw level of the preset button.
type ButtonInput interface {
	Level() (bool, error)
}

// Sensor reads ambient conditions. A failed read returns a non-nil error.
type Sensor interface {
	ReadTemperatureHumidity() (temperature, humidity float64, err error)
}

// Display is a two-row character display with an optional indicator.
type Display interface {
	Clear() error
	WriteLine(row int, text string) error
	SetIndicatorColor(c Color) error
}

// ByteStore is durable byte-addressed storage.
type ByteStore interface {
	LoadByte(addr uint8) (byte, error)
	StoreByte(addr uint8, b byte) error
}

// Color is the indicator color.
type Color string

const (
	ColorOff   Color = "OFF"
	ColorRed   Color = "RED"
	ColorGreen Color = "GREEN"
	ColorBlue  Color = "BLUE"
)

// PumpState is the logical pump state.
type PumpState string

const (
	PumpOff PumpState = "OFF"
	PumpOn  PumpState = "ON"
)

// EventType identifies a controller event.
type EventType string

const (
	EventPumpOn        EventType = "PUMP_ON"
	EventPumpOff       EventType = "PUMP_OFF"
	EventPresetChanged EventType = "PRESET_CHANGED"
)

// Event is emitted on every pump transition and preset change.
type Event struct {
	Type    EventType
	At      Millis
	Preset  Preset
	Index   int
	Reading Reading
}

// String renders the event as a human-readable log line.
func (e Event) String() string {
	switch e.Type {
	case EventPumpOn:
		return "Pump ON  | " + e.Reading.String()
	case EventPumpOff:
		return "Pump OFF | " + e.Reading.String()
	case EventPresetChanged:
		return fmt.Sprintf("Preset %d: %s", e.Index, e.Preset.Label)
	}
	return string(e.Type)
}

// Reading is the cached sensor state.
type Reading struct {
	Temperature float64
	Humidity    float64
	LastUpdated Millis
	// Valid is set by the first successful read and never cleared.
	Valid bool
}

// String formats the reading for logs.
func (r Reading) String() string {
	if !r.Valid {
		return "Temp: --C | Hum: --%"
	}
	return fmt.Sprintf("Temp: %.1fC | Hum: %.1f%%", r.Temperature, r.Humidity)
}

// EventCounts tracks the number of each event since startup.
type EventCounts struct {
	PumpOn        int
	PumpOff       int
	PresetChanges int
}

// HeartbeatData contains data for a periodic heartbeat.
type HeartbeatData struct {
	At     Millis
	Uptime time.Duration
	Counts EventCounts
}

// Frame is one full display update.
type Frame struct {
	Line1 string
	Line2 string
	Color Color
}
