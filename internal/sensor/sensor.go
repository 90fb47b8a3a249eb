// Package sensor provides temperature/humidity drivers.
package sensor

import "errors"

// ErrUnavailable is returned when no fresh reading can be produced.
var ErrUnavailable = errors.New("sensor: reading unavailable")

// Absent stands in when the sensor feature is disabled. Every read fails,
// so the display keeps showing its no-sensor text.
type Absent struct{}

// ReadTemperatureHumidity always returns ErrUnavailable.
func (Absent) ReadTemperatureHumidity() (float64, float64, error) {
	return 0, 0, ErrUnavailable
}
