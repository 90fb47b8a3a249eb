package logic

// DefaultDebounce is the time a raw level must stay unchanged before it is
// accepted.
const DefaultDebounce Millis = 50

// Button debounces the preset button. HIGH is the pressed level.
type Button struct {
	debounce   Millis
	raw        bool
	stable     bool
	lastChange Millis
}

// NewButton creates a released button.
func NewButton(debounce Millis) *Button {
	return &Button{debounce: debounce}
}

// Update feeds one raw sample and reports a press edge.
// Any change of the raw level restarts the debounce window; the stable level
// follows once the raw level has been held for longer than the window.
func (b *Button) Update(level bool, now Millis) bool {
	if level != b.raw {
		b.raw = level
		b.lastChange = now
		return false
	}
	if b.raw == b.stable {
		return false
	}
	if Elapsed(now, b.lastChange) <= b.debounce {
		return false
	}
	b.stable = b.raw
	return b.stable
}

// Stable returns the debounced level.
func (b *Button) Stable() bool {
	return b.stable
}
