package logic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// feed drives b with level samples every step ms starting at start and
// returns the number of presses.
func feed(b *Button, start, step Millis, levels ...bool) int {
	presses := 0
	now := start
	for _, l := range levels {
		if b.Update(l, now) {
			presses++
		}
		now += step
	}
	return presses
}

func TestButtonBounceWithinWindowNeverPresses(t *testing.T) {
	b := NewButton(DefaultDebounce)
	// Flips every 10ms for 200ms, then released.
	var levels []bool
	for i := 0; i < 20; i++ {
		levels = append(levels, i%2 == 0)
	}
	assert.Equal(t, 0, feed(b, 0, 10, levels...))
	assert.False(t, b.Stable())
}

func TestButtonHeldProducesOnePress(t *testing.T) {
	b := NewButton(DefaultDebounce)
	presses := feed(b, 0, 10, false, true, false, true, true, true, true, true, true, true, true, true, true)
	assert.Equal(t, 1, presses)
	assert.True(t, b.Stable())

	// Holding for a long time never fires again.
	assert.Equal(t, 0, feed(b, 200, 10, repeatLevel(true, 500)...))
}

func TestButtonExactDebounceIsNotEnough(t *testing.T) {
	b := NewButton(DefaultDebounce)
	assert.False(t, b.Update(true, 0))
	assert.False(t, b.Update(true, 50))
	assert.True(t, b.Update(true, 51))
}

func TestButtonReleaseDoesNotPress(t *testing.T) {
	b := NewButton(DefaultDebounce)
	assert.Equal(t, 1, feed(b, 0, 10, repeatLevel(true, 10)...))
	assert.Equal(t, 0, feed(b, 100, 10, repeatLevel(false, 10)...))
	assert.False(t, b.Stable())
	assert.Equal(t, 1, feed(b, 200, 10, repeatLevel(true, 10)...))
}

func TestButtonAcrossWrap(t *testing.T) {
	b := NewButton(DefaultDebounce)
	start := Millis(math.MaxUint32 - 20)
	assert.Equal(t, 1, feed(b, start, 10, repeatLevel(true, 10)...))
}

func repeatLevel(l bool, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = l
	}
	return out
}
