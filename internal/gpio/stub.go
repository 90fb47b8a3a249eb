//go:build !linux

package gpio

// RealRelay is not available on non-Linux platforms.
type RealRelay struct{}

// NewRealRelay returns an error on non-Linux platforms.
func NewRealRelay(chip string, pin int) (*RealRelay, error) {
	return nil, errNotSupported
}

// SetOutput is not implemented on non-Linux platforms.
func (r *RealRelay) SetOutput(high bool) error {
	return errNotSupported
}

// Close is not implemented on non-Linux platforms.
func (r *RealRelay) Close() error {
	return nil
}

// RealButton is not available on non-Linux platforms.
type RealButton struct{}

// NewRealButton returns an error on non-Linux platforms.
func NewRealButton(chip string, pin int) (*RealButton, error) {
	return nil, errNotSupported
}

// Level is not implemented on non-Linux platforms.
func (b *RealButton) Level() (bool, error) {
	return false, errNotSupported
}

// Close is not implemented on non-Linux platforms.
func (b *RealButton) Close() error {
	return nil
}
