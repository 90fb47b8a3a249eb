package logic

import "fmt"

// Pump owns the relay and the on/off schedule.
type Pump struct {
	relay         Relay
	onDuration    Millis
	cycleInterval Millis

	running   bool
	startedAt Millis
	stoppedAt Millis
}

// NewPump creates a stopped pump using the durations of p.
// stoppedAt starts at zero.
func NewPump(relay Relay, p Preset) *Pump {
	return &Pump{
		relay:         relay,
		onDuration:    ToMillis(p.OnDuration),
		cycleInterval: ToMillis(p.CycleInterval),
	}
}

// TurnOn starts the pump. Returns false if it was already running.
// The state changes even when the relay write fails; the error is returned
// so the caller can report it.
func (p *Pump) TurnOn(now Millis) (bool, error) {
	if p.running {
		return false, nil
	}
	p.running = true
	p.startedAt = now
	if err := p.relay.SetOutput(true); err != nil {
		return true, fmt.Errorf("relay on: %w", err)
	}
	return true, nil
}

// TurnOff stops the pump. Returns false if it was already stopped.
func (p *Pump) TurnOff(now Millis) (bool, error) {
	if !p.running {
		return false, nil
	}
	p.running = false
	p.stoppedAt = now
	if err := p.relay.SetOutput(false); err != nil {
		return true, fmt.Errorf("relay off: %w", err)
	}
	return true, nil
}

// Tick evaluates the transition relevant to the current state.
// It returns the new state and whether a transition happened.
func (p *Pump) Tick(now Millis) (PumpState, bool, error) {
	if p.running {
		if Elapsed(now, p.startedAt) >= p.onDuration {
			changed, err := p.TurnOff(now)
			return PumpOff, changed, err
		}
		return PumpOn, false, nil
	}
	if Elapsed(now, p.stoppedAt) >= p.cycleInterval {
		changed, err := p.TurnOn(now)
		return PumpOn, changed, err
	}
	return PumpOff, false, nil
}

// Reset applies new durations and restarts the off period from now.
// A running pump is switched off first. It reports whether the pump was
// running.
func (p *Pump) Reset(now Millis, preset Preset) (bool, error) {
	p.onDuration = ToMillis(preset.OnDuration)
	p.cycleInterval = ToMillis(preset.CycleInterval)
	stopped, err := p.TurnOff(now)
	p.stoppedAt = now
	return stopped, err
}

// Running reports whether the pump is on.
func (p *Pump) Running() bool {
	return p.running
}

// State returns the pump state.
func (p *Pump) State() PumpState {
	if p.running {
		return PumpOn
	}
	return PumpOff
}

// Remaining returns the time left until the next transition, clamped at zero.
func (p *Pump) Remaining(now Millis) Millis {
	if p.running {
		return remaining(Elapsed(now, p.startedAt), p.onDuration)
	}
	return remaining(Elapsed(now, p.stoppedAt), p.cycleInterval)
}

func remaining(elapsed, total Millis) Millis {
	if elapsed >= total {
		return 0
	}
	return total - elapsed
}
