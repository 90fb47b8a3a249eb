package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/sweeney/cellar-pump/internal/config"
	"github.com/sweeney/cellar-pump/internal/display"
	"github.com/sweeney/cellar-pump/internal/gpio"
	"github.com/sweeney/cellar-pump/internal/logging"
	"github.com/sweeney/cellar-pump/internal/logic"
	"github.com/sweeney/cellar-pump/internal/sensor"
	"github.com/sweeney/cellar-pump/internal/storage"
)

// hardware is the composed set of peripherals and their cleanup.
type hardware struct {
	periph  logic.Peripherals
	closers []func() error
}

// Close releases resources in reverse order of acquisition. The relay is
// acquired first, so it is driven low last.
func (h *hardware) Close() error {
	var errs []error
	for i := len(h.closers) - 1; i >= 0; i-- {
		if err := h.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	h.closers = nil
	return errors.Join(errs...)
}

func (h *hardware) onClose(fn func() error) {
	h.closers = append(h.closers, fn)
}

// openStore opens the byte store for the preset selection. A store that
// cannot be opened is replaced by memory, so the selection is not kept
// across restarts but the pump still runs.
func openStore(path string) (logic.ByteStore, func() error) {
	if path != "" {
		db, err := openSQLite(path)
		if err == nil {
			return db, db.Close
		}
		logging.Warn("open storage, preset selection will not persist",
			zap.String("path", path), zap.Error(err))
	}
	m := storage.NewMemory()
	return m, m.Close
}

func openSQLite(path string) (*storage.SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	db, err := storage.OpenSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

// compose builds the peripherals selected by cfg. Disabled features get
// no-op implementations, as do enabled ones that fail to initialize. Only
// the relay is required. out receives the simulated display.
func compose(cfg config.Config, in io.Reader, out io.Writer) (*hardware, error) {
	h := &hardware{}

	store, closeStore := openStore(cfg.Storage)
	h.periph.Store = store
	h.onClose(closeStore)

	if cfg.Simulate {
		composeSimulated(h, cfg, in, out)
		return h, nil
	}
	if err := composeHardware(h, cfg); err != nil {
		h.Close()
		return nil, err
	}
	return h, nil
}

func composeHardware(h *hardware, cfg config.Config) error {
	relay, err := gpio.NewRealRelay(cfg.GPIO.Chip, cfg.GPIO.Relay)
	if err != nil {
		return fmt.Errorf("init gpio relay: %w", err)
	}
	h.periph.Relay = relay
	h.onClose(relay.Close)

	h.periph.Button = gpio.Released{}
	if cfg.Features.Button {
		if button, err := gpio.NewRealButton(cfg.GPIO.Chip, cfg.GPIO.Button); err != nil {
			logging.Warn("init gpio button, presets fixed", zap.Int("pin", cfg.GPIO.Button), zap.Error(err))
		} else {
			h.periph.Button = button
			h.onClose(button.Close)
		}
	}

	h.periph.Sensor = sensor.Absent{}
	h.periph.Display = display.Nop{}
	if cfg.Features.Sensor || cfg.Features.Display {
		if err := composeI2C(h, cfg); err != nil {
			logging.Warn("init i2c peripherals", zap.String("bus", cfg.I2CBus), zap.Error(err))
		}
	}
	return nil
}

// composeI2C attaches the sensor and display. Whatever was attached before
// a failure stays attached.
func composeI2C(h *hardware, cfg config.Config) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("init periph host: %w", err)
	}
	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return fmt.Errorf("open i2c bus: %w", err)
	}
	h.onClose(bus.Close)

	if cfg.Features.Sensor {
		h.periph.Sensor = sensor.NewDHT20(bus)
	}
	if cfg.Features.Display {
		lcd, err := display.NewGroveLCD(bus)
		if err != nil {
			return fmt.Errorf("init display: %w", err)
		}
		h.periph.Display = lcd
		if !cfg.Features.Color {
			h.periph.Display = display.Monochrome{Display: lcd}
		}
	}
	return nil
}

func composeSimulated(h *hardware, cfg config.Config, in io.Reader, out io.Writer) {
	relay := gpio.NewFakeRelay()
	h.periph.Relay = relay
	h.onClose(relay.Close)

	h.periph.Button = gpio.Released{}
	if cfg.Features.Button && in != nil {
		h.periph.Button = newKeyButton(in, 200*time.Millisecond)
	}

	h.periph.Sensor = sensor.Absent{}
	if cfg.Features.Sensor {
		h.periph.Sensor = sensor.NewSimulated()
	}

	h.periph.Display = display.Nop{}
	if cfg.Features.Display {
		term := display.NewTerminal(out)
		term.Monochrome = !cfg.Features.Color
		h.periph.Display = term
	}
}

// keyButton holds the simulated button down for a moment after each line
// read from its input, so pressing Enter cycles the preset.
type keyButton struct {
	hold  time.Duration
	until atomic.Int64
}

func newKeyButton(in io.Reader, hold time.Duration) *keyButton {
	b := &keyButton{hold: hold}
	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			b.press(time.Now())
		}
	}()
	return b
}

func (b *keyButton) press(at time.Time) {
	b.until.Store(at.Add(b.hold).UnixNano())
}

func (b *keyButton) Level() (bool, error) {
	return time.Now().UnixNano() < b.until.Load(), nil
}
