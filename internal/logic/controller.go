package logic

import (
	"errors"
	"fmt"
	"time"
)

// Timing holds the controller's fixed intervals.
type Timing struct {
	Debounce        Millis
	SensorInterval  Millis
	DisplayInterval Millis
	OverlayDuration Millis
	GreenThreshold  Millis
}

// DefaultTiming returns the standard intervals.
func DefaultTiming() Timing {
	return Timing{
		Debounce:        DefaultDebounce,
		SensorInterval:  DefaultSensorInterval,
		DisplayInterval: DefaultDisplayInterval,
		OverlayDuration: DefaultOverlayDuration,
		GreenThreshold:  DefaultGreenThreshold,
	}
}

// Peripherals are the collaborators a Controller drives. Disabled features
// are represented by no-op implementations, never by nil.
type Peripherals struct {
	Relay   Relay
	Button  ButtonInput
	Sensor  Sensor
	Display Display
	Store   ByteStore
}

// Controller owns all control state and runs one iteration per Step.
type Controller struct {
	periph    Peripherals
	pump      *Pump
	button    *Button
	presets   *Presets
	store     *PresetStore
	sampler   *Sampler
	presenter *Presenter
	overlay   *Overlay

	counts        EventCounts
	lastStep      Millis
	uptime        time.Duration
	lastHeartbeat time.Duration
	lastFrame     Frame
}

// NewController builds a controller from a validated catalog. The initial
// preset comes from the store; LoadResult and any read error are returned
// for logging, the controller is usable either way.
func NewController(periph Peripherals, catalog []Preset, timing Timing) (*Controller, LoadResult, error) {
	store := NewPresetStore(periph.Store, len(catalog))
	index, result, loadErr := store.Load()
	presets := NewPresets(catalog, index)
	_, preset := presets.Current()

	c := &Controller{
		periph:    periph,
		pump:      NewPump(periph.Relay, preset),
		button:    NewButton(timing.Debounce),
		presets:   presets,
		store:     store,
		sampler:   NewSampler(periph.Sensor, timing.SensorInterval),
		presenter: NewPresenter(timing.DisplayInterval, timing.GreenThreshold),
		overlay:   NewOverlay(timing.OverlayDuration),
	}
	return c, result, loadErr
}

// Start runs the boot sequence: the pump is switched on immediately.
func (c *Controller) Start(now Millis) ([]Event, error) {
	c.lastStep = now
	var errs []error
	if err := c.periph.Display.Clear(); err != nil {
		errs = append(errs, fmt.Errorf("display clear: %w", err))
	}
	var events []Event
	changed, err := c.pump.TurnOn(now)
	if err != nil {
		errs = append(errs, err)
	}
	if changed {
		events = append(events, c.event(EventPumpOn, now))
	}
	return events, errors.Join(errs...)
}

// Step runs one loop iteration in fixed order: button, pump, sensor,
// overlay expiry, display. Peripheral failures are collected and returned;
// they never skip a later duty.
func (c *Controller) Step(now Millis) ([]Event, error) {
	c.uptime += time.Duration(Elapsed(now, c.lastStep)) * time.Millisecond
	c.lastStep = now

	var events []Event
	var errs []error

	// 1. Button and preset change.
	level, err := c.periph.Button.Level()
	if err != nil {
		errs = append(errs, fmt.Errorf("button: %w", err))
	} else if c.button.Update(level, now) {
		ev, err := c.changePreset(now)
		events = append(events, ev...)
		if err != nil {
			errs = append(errs, err)
		}
	}

	// 2. Pump schedule.
	state, changed, err := c.pump.Tick(now)
	if err != nil {
		errs = append(errs, err)
	}
	if changed {
		typ := EventPumpOff
		if state == PumpOn {
			typ = EventPumpOn
		}
		events = append(events, c.event(typ, now))
	}

	// 3. Sensor. Read failures are expected and only reported, the cached
	// reading stays as it was.
	if _, err := c.sampler.Sample(now); err != nil {
		errs = append(errs, &SensorError{Err: err})
	}

	// 4. Overlay expiry.
	c.overlay.Expire(now)

	// 5. Normal display.
	if !c.overlay.Active() && c.presenter.Due(now) {
		f := c.presenter.Render(c.pump.State(), c.pump.Remaining(now), c.sampler.Reading())
		if err := c.show(f); err != nil {
			errs = append(errs, err)
		}
	}

	return events, errors.Join(errs...)
}

func (c *Controller) changePreset(now Millis) ([]Event, error) {
	var events []Event
	var errs []error

	// The stop is reported against the preset that was running.
	stopped := c.describe(EventPumpOff, now)
	index, preset := c.presets.Next()
	wasRunning, err := c.pump.Reset(now, preset)
	if err != nil {
		errs = append(errs, err)
	}
	if wasRunning {
		c.counts.PumpOff++
		events = append(events, stopped)
	}
	if err := c.store.Save(index); err != nil {
		errs = append(errs, fmt.Errorf("save preset: %w", err))
	}
	if err := c.show(c.overlay.Trigger(now, preset.Label)); err != nil {
		errs = append(errs, err)
	}
	events = append(events, c.event(EventPresetChanged, now))
	return events, errors.Join(errs...)
}

func (c *Controller) event(typ EventType, now Millis) Event {
	e := c.describe(typ, now)
	switch typ {
	case EventPumpOn:
		c.counts.PumpOn++
	case EventPumpOff:
		c.counts.PumpOff++
	case EventPresetChanged:
		c.counts.PresetChanges++
	}
	return e
}

// describe builds an event for the current preset without counting it.
func (c *Controller) describe(typ EventType, now Millis) Event {
	index, preset := c.presets.Current()
	return Event{
		Type:    typ,
		At:      now,
		Preset:  preset,
		Index:   index,
		Reading: c.sampler.Reading(),
	}
}

func (c *Controller) show(f Frame) error {
	c.lastFrame = f
	if err := c.periph.Display.WriteLine(0, fitLine(f.Line1)); err != nil {
		return fmt.Errorf("display line 0: %w", err)
	}
	if err := c.periph.Display.WriteLine(1, fitLine(f.Line2)); err != nil {
		return fmt.Errorf("display line 1: %w", err)
	}
	if err := c.periph.Display.SetIndicatorColor(f.Color); err != nil {
		return fmt.Errorf("display color: %w", err)
	}
	return nil
}

// fitLine pads or truncates s to one display row so a shorter line fully
// overwrites the previous one without a clear.
func fitLine(s string) string {
	r := []rune(s)
	if len(r) > DisplayColumns {
		return string(r[:DisplayColumns])
	}
	for len(r) < DisplayColumns {
		r = append(r, ' ')
	}
	return string(r)
}

// CheckHeartbeat returns heartbeat data if interval has elapsed since the
// last heartbeat (or startup). Returns nil if interval is <= 0.
func (c *Controller) CheckHeartbeat(now Millis, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}
	if c.uptime-c.lastHeartbeat < interval {
		return nil
	}
	c.lastHeartbeat = c.uptime
	return &HeartbeatData{
		At:     now,
		Uptime: c.uptime,
		Counts: c.counts,
	}
}

// Snapshot is a copy of the controller state for telemetry.
type Snapshot struct {
	Pump          PumpState
	Remaining     time.Duration
	PresetIndex   int
	Preset        Preset
	Reading       Reading
	OverlayActive bool
	Frame         Frame
	Counts        EventCounts
	Uptime        time.Duration
}

// Snapshot returns the current state.
func (c *Controller) Snapshot(now Millis) Snapshot {
	index, preset := c.presets.Current()
	return Snapshot{
		Pump:          c.pump.State(),
		Remaining:     time.Duration(c.pump.Remaining(now)) * time.Millisecond,
		PresetIndex:   index,
		Preset:        preset,
		Reading:       c.sampler.Reading(),
		OverlayActive: c.overlay.Active(),
		Frame:         c.lastFrame,
		Counts:        c.counts,
		Uptime:        c.uptime,
	}
}

// SensorError wraps a failed sensor read. Callers treat it as routine.
type SensorError struct {
	Err error
}

func (e *SensorError) Error() string { return "sensor: " + e.Err.Error() }

func (e *SensorError) Unwrap() error { return e.Err }
