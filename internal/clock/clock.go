// Package clock provides millisecond counters for the control loop.
package clock

import (
	"time"

	"github.com/sweeney/cellar-pump/internal/logic"
)

// Monotonic counts milliseconds since construction on the Go monotonic
// clock. The counter is truncated to 32 bits, so it wraps after about
// 49.7 days exactly like a microcontroller millis() counter.
type Monotonic struct {
	start  time.Time
	offset logic.Millis
}

// NewMonotonic returns a counter starting at offset. A non-zero offset lets a
// real run cross the wrap point early.
func NewMonotonic(offset logic.Millis) *Monotonic {
	return &Monotonic{start: time.Now(), offset: offset}
}

// Now returns the current counter value.
func (m *Monotonic) Now() logic.Millis {
	return m.offset + logic.Millis(uint32(time.Since(m.start).Milliseconds()))
}

// Fake is a manually advanced counter for tests.
type Fake struct {
	now logic.Millis
}

// NewFake returns a Fake starting at now.
func NewFake(now logic.Millis) *Fake {
	return &Fake{now: now}
}

// Now returns the current value.
func (f *Fake) Now() logic.Millis {
	return f.now
}

// Set jumps to now.
func (f *Fake) Set(now logic.Millis) {
	f.now = now
}

// Advance moves the counter forward by d, wrapping as needed.
func (f *Fake) Advance(d time.Duration) logic.Millis {
	f.now += logic.ToMillis(d)
	return f.now
}
