package logic

// Overlay is a transient frame that preempts the presenter.
type Overlay struct {
	duration  Millis
	active    bool
	startedAt Millis
}

// NewOverlay creates an inactive overlay.
func NewOverlay(duration Millis) *Overlay {
	return &Overlay{duration: duration}
}

// Trigger activates the overlay and returns the frame to show now.
func (o *Overlay) Trigger(now Millis, label string) Frame {
	o.active = true
	o.startedAt = now
	return Frame{Line1: "Preset:", Line2: label, Color: ColorBlue}
}

// Expire deactivates the overlay once its duration has elapsed.
// It reports whether the overlay ended during this call.
func (o *Overlay) Expire(now Millis) bool {
	if !o.active || Elapsed(now, o.startedAt) < o.duration {
		return false
	}
	o.active = false
	return true
}

// Active reports whether the overlay currently owns the display.
func (o *Overlay) Active() bool {
	return o.active
}
