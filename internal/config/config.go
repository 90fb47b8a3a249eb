// Package config holds the controller's composition-time configuration.
// Defaults are compiled in; an optional YAML file overrides them once at
// startup. Nothing here is consulted after the loop starts.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/cellar-pump/internal/gpio"
	"github.com/sweeney/cellar-pump/internal/logic"
)

// Features selects which peripherals are present. An absent peripheral is
// replaced by a no-op implementation at composition time.
type Features struct {
	Sensor  bool `yaml:"sensor"`
	Display bool `yaml:"display"`
	Color   bool `yaml:"color"`
	Button  bool `yaml:"button"`
}

// GPIO holds pin assignments (BCM numbering).
type GPIO struct {
	Chip   string `yaml:"chip"`
	Relay  int    `yaml:"relay"`
	Button int    `yaml:"button"`
}

// Timing holds the loop intervals.
type Timing struct {
	Poll            time.Duration `yaml:"poll"`
	Debounce        time.Duration `yaml:"debounce"`
	SensorInterval  time.Duration `yaml:"sensor_interval"`
	DisplayInterval time.Duration `yaml:"display_interval"`
	OverlayDuration time.Duration `yaml:"overlay_duration"`
	GreenThreshold  time.Duration `yaml:"green_threshold"`
}

// Preset is one catalog entry.
type Preset struct {
	Label         string        `yaml:"label"`
	OnDuration    time.Duration `yaml:"on"`
	CycleInterval time.Duration `yaml:"interval"`
}

// MQTT configures the optional event publisher. An empty broker disables it.
type MQTT struct {
	Broker    string        `yaml:"broker"`
	ClientID  string        `yaml:"client_id"`
	Heartbeat time.Duration `yaml:"heartbeat"`
}

// Config is the full configuration.
type Config struct {
	Features Features `yaml:"features"`
	GPIO     GPIO     `yaml:"gpio"`
	I2CBus   string   `yaml:"i2c_bus"`
	Timing   Timing   `yaml:"timing"`
	Presets  []Preset `yaml:"presets"`
	// Storage is the SQLite path for the preset selection. Empty keeps it
	// in memory only.
	Storage string `yaml:"storage"`
	MQTT    MQTT   `yaml:"mqtt"`
	HTTP    string `yaml:"http"`
	// LogLevel empty falls back to CELLAR_PUMP_LOG_LEVEL, then info.
	LogLevel string `yaml:"log_level"`
	// Simulate replaces all hardware with simulated devices and renders
	// the display on the terminal.
	Simulate bool `yaml:"simulate"`
	// ClockOffset starts the millisecond counter at this value.
	ClockOffset uint32 `yaml:"clock_offset"`
}

// Default returns the built-in configuration.
func Default() Config {
	presets := make([]Preset, len(logic.DefaultPresets))
	for i, p := range logic.DefaultPresets {
		presets[i] = Preset{Label: p.Label, OnDuration: p.OnDuration, CycleInterval: p.CycleInterval}
	}
	return Config{
		Features: Features{Sensor: true, Display: true, Color: true, Button: true},
		GPIO:     GPIO{Chip: gpio.DefaultChip, Relay: gpio.DefaultPinRelay, Button: gpio.DefaultPinButton},
		Timing: Timing{
			Poll:            10 * time.Millisecond,
			Debounce:        millis(logic.DefaultDebounce),
			SensorInterval:  millis(logic.DefaultSensorInterval),
			DisplayInterval: millis(logic.DefaultDisplayInterval),
			OverlayDuration: millis(logic.DefaultOverlayDuration),
			GreenThreshold:  millis(logic.DefaultGreenThreshold),
		},
		Presets: presets,
		Storage: "/var/lib/cellar-pump/preset.db",
		MQTT:    MQTT{ClientID: "cellar-pump", Heartbeat: 15 * time.Minute},
	}
}

func millis(m logic.Millis) time.Duration {
	return time.Duration(m) * time.Millisecond
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration. Warnings are returned for settings
// that are allowed but probably unintended.
func (c Config) Validate() (warnings []string, err error) {
	var errs []error
	if err := logic.ValidatePresets(c.Catalog()); err != nil {
		errs = append(errs, err)
	}
	for name, d := range map[string]time.Duration{
		"poll":             c.Timing.Poll,
		"debounce":         c.Timing.Debounce,
		"sensor_interval":  c.Timing.SensorInterval,
		"display_interval": c.Timing.DisplayInterval,
		"overlay_duration": c.Timing.OverlayDuration,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("timing.%s must be positive", name))
		}
	}
	if c.Timing.GreenThreshold < 0 {
		errs = append(errs, errors.New("timing.green_threshold must not be negative"))
	}
	if c.Timing.Poll > c.Timing.Debounce {
		warnings = append(warnings, fmt.Sprintf("poll %v is longer than debounce %v; presses may be missed", c.Timing.Poll, c.Timing.Debounce))
	}
	for i, p := range c.Presets {
		if p.OnDuration >= p.CycleInterval {
			warnings = append(warnings, fmt.Sprintf("preset %d (%s): on %v is not shorter than interval %v", i, p.Label, p.OnDuration, p.CycleInterval))
		}
	}
	if c.Features.Color && !c.Features.Display {
		warnings = append(warnings, "color indicator enabled without display; ignored")
	}
	return warnings, errors.Join(errs...)
}

// Catalog converts the presets for the controller.
func (c Config) Catalog() []logic.Preset {
	out := make([]logic.Preset, len(c.Presets))
	for i, p := range c.Presets {
		out[i] = logic.Preset{Label: p.Label, OnDuration: p.OnDuration, CycleInterval: p.CycleInterval}
	}
	return out
}

// ControllerTiming converts the intervals for the controller.
func (c Config) ControllerTiming() logic.Timing {
	return logic.Timing{
		Debounce:        logic.ToMillis(c.Timing.Debounce),
		SensorInterval:  logic.ToMillis(c.Timing.SensorInterval),
		DisplayInterval: logic.ToMillis(c.Timing.DisplayInterval),
		OverlayDuration: logic.ToMillis(c.Timing.OverlayDuration),
		GreenThreshold:  logic.ToMillis(c.Timing.GreenThreshold),
	}
}
