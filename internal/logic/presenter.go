package logic

import "fmt"

// Display timing and thresholds.
const (
	DefaultDisplayInterval Millis = 500
	DefaultGreenThreshold  Millis = 5 * 60 * 1000
	DefaultOverlayDuration Millis = 2000
)

// DisplayColumns is the width of one display row.
const DisplayColumns = 16

// NoSensorText is shown on line 1 until a reading has succeeded.
const NoSensorText = "No sensor"

// Presenter renders the normal status frame.
type Presenter struct {
	interval       Millis
	greenThreshold Millis
	lastRender     Millis
}

// NewPresenter creates a presenter. The first frame is due once interval
// has elapsed since counter zero.
func NewPresenter(interval, greenThreshold Millis) *Presenter {
	return &Presenter{interval: interval, greenThreshold: greenThreshold}
}

// Due reports whether a render is due and, if so, claims the slot.
func (p *Presenter) Due(now Millis) bool {
	if Elapsed(now, p.lastRender) < p.interval {
		return false
	}
	p.lastRender = now
	return true
}

// Render builds the status frame.
func (p *Presenter) Render(state PumpState, remaining Millis, reading Reading) Frame {
	f := Frame{
		Line1: FormatReading(reading),
		Line2: FormatPumpLine(state, remaining),
		Color: ColorOff,
	}
	switch {
	case state == PumpOn:
		f.Color = ColorRed
	case remaining < p.greenThreshold:
		f.Color = ColorGreen
	}
	return f
}

// FormatReading renders line 1. When a sub -10C temperature and saturated
// humidity together overflow the row, humidity drops its decimal.
func FormatReading(r Reading) string {
	if !r.Valid {
		return NoSensorText
	}
	line := fmt.Sprintf("T:%4.1fC H:%4.1f%%", r.Temperature, r.Humidity)
	if len(line) > DisplayColumns {
		line = fmt.Sprintf("T:%4.1fC H:%.0f%%", r.Temperature, r.Humidity)
	}
	return line
}

// FormatPumpLine renders line 2. A running pump shows whole seconds until it
// stops. A stopped pump shows the time until the next start in seconds up to
// 120s, then in minutes up to 120m, then in hours, rounding half up.
func FormatPumpLine(state PumpState, remaining Millis) string {
	sec := uint32(remaining / 1000)
	if state == PumpOn {
		return fmt.Sprintf("Pump on %ds", sec)
	}
	if sec <= 120 {
		return fmt.Sprintf("Pump off %ds", sec)
	}
	mins := (sec + 30) / 60
	if mins <= 120 {
		return fmt.Sprintf("Pump off %dm", mins)
	}
	return fmt.Sprintf("Pump off %dh", (mins+30)/60)
}
