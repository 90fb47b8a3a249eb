package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sweeney/cellar-pump/internal/logic"
)

var terminalColors = map[logic.Color]lipgloss.Color{
	logic.ColorOff:   lipgloss.Color("240"),
	logic.ColorRed:   lipgloss.Color("196"),
	logic.ColorGreen: lipgloss.Color("46"),
	logic.ColorBlue:  lipgloss.Color("33"),
}

// Terminal renders the panel on a terminal for runs without hardware.
// A frame is printed when the indicator is set, which the controller does
// last in every update.
type Terminal struct {
	// Monochrome draws every frame in the off color.
	Monochrome bool

	w     io.Writer
	lines [Rows]string
	last  string
}

// NewTerminal creates a terminal display writing to w.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

// Clear blanks both rows.
func (t *Terminal) Clear() error {
	t.lines = [Rows]string{}
	return nil
}

// WriteLine stores text for the next frame.
func (t *Terminal) WriteLine(row int, text string) error {
	if row < 0 || row >= Rows {
		return fmt.Errorf("row %d out of range", row)
	}
	t.lines[row] = text
	return nil
}

// SetIndicatorColor prints the panel framed in the indicator color.
// Identical consecutive frames are printed once.
func (t *Terminal) SetIndicatorColor(c logic.Color) error {
	if t.Monochrome {
		c = logic.ColorOff
	}
	frame := t.Render(c)
	if frame == t.last {
		return nil
	}
	t.last = frame
	_, err := fmt.Fprintln(t.w, frame)
	return err
}

// Render returns the panel as a styled string.
func (t *Terminal) Render(c logic.Color) string {
	color, ok := terminalColors[c]
	if !ok {
		color = terminalColors[logic.ColorOff]
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Foreground(color).
		Width(Columns + 2).
		Padding(0, 1)
	rows := make([]string, Rows)
	for i, l := range t.lines {
		rows[i] = fmt.Sprintf("%-*s", Columns, l)
	}
	return style.Render(strings.Join(rows, "\n"))
}
