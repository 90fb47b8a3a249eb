package display

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"

	"github.com/sweeney/cellar-pump/internal/logic"
)

func TestGroveLCDWriteLine(t *testing.T) {
	bus := &i2ctest.Record{}
	g, err := NewGroveLCD(bus)
	require.NoError(t, err)
	bus.Ops = nil

	require.NoError(t, g.WriteLine(1, "Pump on 5s"))

	require.Len(t, bus.Ops, 2)
	assert.Equal(t, uint16(LCDAddr), bus.Ops[0].Addr)
	assert.Equal(t, []byte{0x80, 0xC0}, bus.Ops[0].W, "row 1 starts at DDRAM 0x40")
	assert.Equal(t, append([]byte{0x40}, "Pump on 5s"...), bus.Ops[1].W)
}

func TestGroveLCDRowOutOfRange(t *testing.T) {
	g, err := NewGroveLCD(&i2ctest.Record{})
	require.NoError(t, err)
	assert.Error(t, g.WriteLine(2, "x"))
}

func TestGroveLCDColorWritesOnlyOnChange(t *testing.T) {
	bus := &i2ctest.Record{}
	g, err := NewGroveLCD(bus)
	require.NoError(t, err)
	bus.Ops = nil

	require.NoError(t, g.SetIndicatorColor(logic.ColorRed))
	require.Len(t, bus.Ops, 3)
	assert.Equal(t, uint16(RGBAddr), bus.Ops[0].Addr)
	assert.Equal(t, []byte{rgbRed, 100}, bus.Ops[0].W)
	assert.Equal(t, []byte{rgbGreen, 0}, bus.Ops[1].W)
	assert.Equal(t, []byte{rgbBlue, 0}, bus.Ops[2].W)

	require.NoError(t, g.SetIndicatorColor(logic.ColorRed))
	assert.Len(t, bus.Ops, 3)

	assert.Error(t, g.SetIndicatorColor(logic.Color("PURPLE")))
}

func TestToLCDCharset(t *testing.T) {
	assert.Equal(t, []byte("T:12.5C H:80.0%"), toLCDCharset("T:12.5C H:80.0%"))
	assert.Equal(t, []byte("12?C"), toLCDCharset("12°C"))
	assert.Len(t, toLCDCharset("this line is far too long for the panel"), Columns)
}

func TestTerminalPrintsChangedFramesOnce(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	require.NoError(t, term.WriteLine(0, "T:12.5C H:80.0%"))
	require.NoError(t, term.WriteLine(1, "Pump on 59s"))
	require.NoError(t, term.SetIndicatorColor(logic.ColorRed))
	first := buf.Len()
	assert.Contains(t, buf.String(), "Pump on 59s")

	require.NoError(t, term.SetIndicatorColor(logic.ColorRed))
	assert.Equal(t, first, buf.Len(), "identical frame should not be printed again")

	require.NoError(t, term.WriteLine(1, "Pump on 58s"))
	require.NoError(t, term.SetIndicatorColor(logic.ColorRed))
	assert.Greater(t, buf.Len(), first)
}

func TestMonochromeDropsColor(t *testing.T) {
	f := NewFake()
	var d logic.Display = Monochrome{f}

	require.NoError(t, d.WriteLine(0, "hello"))
	require.NoError(t, d.SetIndicatorColor(logic.ColorRed))
	assert.Equal(t, "hello", f.Lines[0])
	assert.Empty(t, f.Colors)
}

func TestFakeWriteError(t *testing.T) {
	f := NewFake()
	f.WriteError = errors.New("i2c nack")
	assert.Error(t, f.WriteLine(0, "x"))
	assert.Error(t, NewFake().WriteLine(5, "x"))
}

func TestTerminalMonochromeIgnoresColor(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)
	term.Monochrome = true

	require.NoError(t, term.WriteLine(0, "No sensor"))
	require.NoError(t, term.SetIndicatorColor(logic.ColorRed))
	first := buf.Len()
	require.NoError(t, term.SetIndicatorColor(logic.ColorGreen))

	assert.Equal(t, first, buf.Len())
	assert.Contains(t, buf.String(), "No sensor")
}
