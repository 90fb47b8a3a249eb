package gpio

// FakeRelay records every output write.
type FakeRelay struct {
	// Writes contains every level passed to SetOutput, in order.
	Writes []bool

	// High is the current output level.
	High bool

	// SetError, if set, will be returned by SetOutput. The write is still
	// recorded.
	SetError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeRelay creates a FakeRelay with the output low.
func NewFakeRelay() *FakeRelay {
	return &FakeRelay{}
}

// SetOutput records the level.
func (f *FakeRelay) SetOutput(high bool) error {
	f.Writes = append(f.Writes, high)
	f.High = high
	return f.SetError
}

// Close drives the output low and marks the relay closed.
func (f *FakeRelay) Close() error {
	f.High = false
	f.Closed = true
	return nil
}

// FakeButton is a test double that returns scripted levels.
type FakeButton struct {
	// Levels contains scripted values to return.
	// Each call to Level() consumes the next entry.
	Levels []bool

	// index tracks current position in Levels
	index int

	// Pressed, when Levels is empty, is returned on every call.
	Pressed bool

	// ReadError, if set, will be returned by Level()
	ReadError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeButton creates a FakeButton with the given levels.
func NewFakeButton(levels []bool) *FakeButton {
	return &FakeButton{Levels: levels}
}

// Level returns the next scripted level.
// If levels are exhausted, returns the last level repeatedly.
func (f *FakeButton) Level() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}
	if len(f.Levels) == 0 {
		return f.Pressed, nil
	}

	level := f.Levels[f.index]
	if f.index < len(f.Levels)-1 {
		f.index++
	}
	return level, nil
}

// Close marks the button as closed.
func (f *FakeButton) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds the scripted levels.
func (f *FakeButton) Reset() {
	f.index = 0
	f.Closed = false
}
