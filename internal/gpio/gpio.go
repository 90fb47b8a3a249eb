// Package gpio provides the pump relay output and preset button input with
// hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementations allow testing without hardware.
package gpio

import "errors"

// Relay drives a digital output. high = pump on.
type Relay interface {
	SetOutput(high bool) error

	// Close drives the output low and releases GPIO resources.
	Close() error
}

// Button reads a digital input. true = pressed (HIGH).
type Button interface {
	Level() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Pin definitions (BCM numbering)
const (
	DefaultPinRelay  = 4
	DefaultPinButton = 17
)

// DefaultChip is the GPIO character device used on a Raspberry Pi.
const DefaultChip = "gpiochip0"

// Released is a Button that is never pressed. It stands in when the preset
// button feature is disabled.
type Released struct{}

// Level always reports LOW.
func (Released) Level() (bool, error) { return false, nil }

// Close does nothing.
func (Released) Close() error { return nil }

var errNotSupported = errors.New("gpio: not supported on this platform (requires Linux)")
