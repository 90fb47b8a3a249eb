//go:build linux

package gpio

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealRelay drives the relay through the Linux GPIO character device.
type RealRelay struct {
	line *gpiocdev.Line
}

// NewRealRelay requests pin on chip as an output, initially low.
func NewRealRelay(chip string, pin int) (*RealRelay, error) {
	line, err := gpiocdev.RequestLine(chip, pin, gpiocdev.AsOutput(0), gpiocdev.WithConsumer("cellar-pump"))
	if err != nil {
		return nil, fmt.Errorf("request relay pin %d: %w", pin, err)
	}
	return &RealRelay{line: line}, nil
}

// SetOutput drives the relay line.
func (r *RealRelay) SetOutput(high bool) error {
	v := 0
	if high {
		v = 1
	}
	if err := r.line.SetValue(v); err != nil {
		return fmt.Errorf("set relay pin: %w", err)
	}
	return nil
}

// Close drives the relay low and reconfigures the line as input with
// pull-down (matching Pi boot defaults) so the pump cannot be left running
// after the process exits.
func (r *RealRelay) Close() error {
	if r.line == nil {
		return nil
	}
	var errs []error
	if err := r.line.SetValue(0); err != nil {
		errs = append(errs, fmt.Errorf("drive relay low: %w", err))
	}
	if err := r.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure relay pin: %w", err))
	}
	if err := r.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close relay pin: %w", err))
	}
	return errors.Join(errs...)
}

// RealButton reads the preset button through the Linux GPIO character device.
type RealButton struct {
	line *gpiocdev.Line
}

// NewRealButton requests pin on chip as an input with pull-down.
// The button connects the pin to 3V3, so pressed reads HIGH.
func NewRealButton(chip string, pin int) (*RealButton, error) {
	line, err := gpiocdev.RequestLine(chip, pin, gpiocdev.AsInput, gpiocdev.WithPullDown, gpiocdev.WithConsumer("cellar-pump"))
	if err != nil {
		return nil, fmt.Errorf("request button pin %d: %w", pin, err)
	}
	return &RealButton{line: line}, nil
}

// Level returns the raw pin level.
func (b *RealButton) Level() (bool, error) {
	v, err := b.line.Value()
	if err != nil {
		return false, fmt.Errorf("read button pin: %w", err)
	}
	return v == 1, nil
}

// Close releases the line.
func (b *RealButton) Close() error {
	if b.line == nil {
		return nil
	}
	if err := b.line.Close(); err != nil {
		return fmt.Errorf("close button pin: %w", err)
	}
	return nil
}
