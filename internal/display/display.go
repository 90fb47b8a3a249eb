// Package display provides drivers for the 16x2 status display.
package display

import (
	"github.com/sweeney/cellar-pump/internal/logic"
)

// Rows and Columns describe the panel.
const (
	Rows    = 2
	Columns = logic.DisplayColumns
)

// Nop discards all output. Used when the display feature is disabled.
type Nop struct{}

func (Nop) Clear() error                          { return nil }
func (Nop) WriteLine(row int, text string) error  { return nil }
func (Nop) SetIndicatorColor(c logic.Color) error { return nil }

// Monochrome wraps a display that has no usable indicator.
type Monochrome struct {
	logic.Display
}

// SetIndicatorColor does nothing.
func (Monochrome) SetIndicatorColor(c logic.Color) error { return nil }
