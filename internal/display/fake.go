package display

import (
	"fmt"

	"github.com/sweeney/cellar-pump/internal/logic"
)

// Fake records display output for test assertions.
type Fake struct {
	// Lines is the current content of each row.
	Lines [Rows]string

	// Color is the current indicator color.
	Color logic.Color

	// Writes counts WriteLine calls.
	Writes int

	// Clears counts Clear calls.
	Clears int

	// Colors contains every color set, in order.
	Colors []logic.Color

	// WriteError, if set, will be returned by WriteLine.
	WriteError error
}

// NewFake creates an empty Fake.
func NewFake() *Fake {
	return &Fake{Color: logic.ColorOff}
}

// Clear blanks both rows.
func (f *Fake) Clear() error {
	f.Clears++
	f.Lines = [Rows]string{}
	return nil
}

// WriteLine stores text in row.
func (f *Fake) WriteLine(row int, text string) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	if row < 0 || row >= Rows {
		return fmt.Errorf("row %d out of range", row)
	}
	f.Writes++
	f.Lines[row] = text
	return nil
}

// SetIndicatorColor records c.
func (f *Fake) SetIndicatorColor(c logic.Color) error {
	f.Color = c
	f.Colors = append(f.Colors, c)
	return nil
}
