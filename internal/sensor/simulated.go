package sensor

import (
	"math"
	"time"
)

// Simulated produces a slow cellar-like temperature and humidity drift for
// runs without hardware. Every FailEvery-th read fails when FailEvery > 0.
type Simulated struct {
	start     time.Time
	reads     int
	FailEvery int
}

// NewSimulated creates a simulated sensor.
func NewSimulated() *Simulated {
	return &Simulated{start: time.Now()}
}

// ReadTemperatureHumidity returns the simulated conditions.
func (s *Simulated) ReadTemperatureHumidity() (float64, float64, error) {
	s.reads++
	if s.FailEvery > 0 && s.reads%s.FailEvery == 0 {
		return 0, 0, ErrUnavailable
	}
	phase := time.Since(s.start).Minutes() / 30 * 2 * math.Pi
	return 12.5 + 1.5*math.Sin(phase), 78 + 6*math.Cos(phase), nil
}
