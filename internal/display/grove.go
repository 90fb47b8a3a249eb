package display

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"

	"github.com/sweeney/cellar-pump/internal/logic"
)

// I2C addresses of the Grove LCD RGB Backlight module.
const (
	LCDAddr = 0x3E
	RGBAddr = 0x62
)

// HD44780 commands.
const (
	lcdClear       = 0x01
	lcdEntryMode   = 0x06 // increment, no shift
	lcdDisplayOn   = 0x0C // display on, cursor off, blink off
	lcdFunctionSet = 0x28 // 4-bit bus, 2 lines, 5x8 font
	lcdSetDDRAM    = 0x80
)

// PCA9633 backlight registers.
const (
	rgbMode1  = 0x00
	rgbMode2  = 0x01
	rgbBlue   = 0x02
	rgbGreen  = 0x03
	rgbRed    = 0x04
	rgbLEDOut = 0x08
)

// backlight levels per indicator color.
var backlight = map[logic.Color][3]byte{
	logic.ColorOff:   {0, 0, 0},
	logic.ColorRed:   {100, 0, 0},
	logic.ColorGreen: {0, 100, 0},
	logic.ColorBlue:  {0, 0, 100},
}

// GroveLCD drives a Grove 16x2 LCD with RGB backlight over I2C.
type GroveLCD struct {
	lcd   *i2c.Dev
	rgb   *i2c.Dev
	color logic.Color
}

// NewGroveLCD initializes the panel and backlight. Initialization waits for
// the controller's power-up delays, so call it before the loop starts.
func NewGroveLCD(bus i2c.Bus) (*GroveLCD, error) {
	g := &GroveLCD{
		lcd:   &i2c.Dev{Addr: LCDAddr, Bus: bus},
		rgb:   &i2c.Dev{Addr: RGBAddr, Bus: bus},
		color: logic.ColorOff,
	}
	time.Sleep(50 * time.Millisecond)
	for _, cmd := range []byte{lcdFunctionSet, lcdFunctionSet, lcdDisplayOn, lcdEntryMode} {
		if err := g.command(cmd); err != nil {
			return nil, fmt.Errorf("init lcd: %w", err)
		}
	}
	if err := g.Clear(); err != nil {
		return nil, fmt.Errorf("init lcd: %w", err)
	}
	for _, reg := range [][2]byte{{rgbMode1, 0x00}, {rgbLEDOut, 0xFF}, {rgbMode2, 0x20}} {
		if err := g.rgb.Tx(reg[:], nil); err != nil {
			return nil, fmt.Errorf("init backlight: %w", err)
		}
	}
	if err := g.writeColor(logic.ColorOff); err != nil {
		return nil, fmt.Errorf("init backlight: %w", err)
	}
	return g, nil
}

func (g *GroveLCD) command(cmd byte) error {
	return g.lcd.Tx([]byte{0x80, cmd}, nil)
}

// Clear blanks the panel. The controller needs about 1.5ms to complete it.
func (g *GroveLCD) Clear() error {
	if err := g.command(lcdClear); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	time.Sleep(2 * time.Millisecond)
	return nil
}

// WriteLine writes text at the start of row. Text beyond the row width is
// dropped.
func (g *GroveLCD) WriteLine(row int, text string) error {
	if row < 0 || row >= Rows {
		return fmt.Errorf("row %d out of range", row)
	}
	if err := g.command(lcdSetDDRAM | byte(row*0x40)); err != nil {
		return fmt.Errorf("set cursor: %w", err)
	}
	data := append([]byte{0x40}, toLCDCharset(text)...)
	if err := g.lcd.Tx(data, nil); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

// SetIndicatorColor sets the backlight color. Repeating the current color
// does not touch the bus.
func (g *GroveLCD) SetIndicatorColor(c logic.Color) error {
	if c == g.color {
		return nil
	}
	if err := g.writeColor(c); err != nil {
		return err
	}
	g.color = c
	return nil
}

func (g *GroveLCD) writeColor(c logic.Color) error {
	rgb, ok := backlight[c]
	if !ok {
		return fmt.Errorf("unknown color %q", c)
	}
	for i, reg := range []byte{rgbRed, rgbGreen, rgbBlue} {
		if err := g.rgb.Tx([]byte{reg, rgb[i]}, nil); err != nil {
			return fmt.Errorf("set backlight: %w", err)
		}
	}
	return nil
}

// toLCDCharset maps text onto the HD44780 ROM, replacing anything outside
// printable ASCII with '?' and truncating to one row.
func toLCDCharset(text string) []byte {
	out := make([]byte, 0, Columns)
	for _, r := range text {
		if len(out) == Columns {
			break
		}
		if r < 0x20 || r > 0x7D {
			r = '?'
		}
		out = append(out, byte(r))
	}
	return out
}
