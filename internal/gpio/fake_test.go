package gpio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeButtonLevels(t *testing.T) {
	f := NewFakeButton([]bool{false, true, true})

	for i, want := range []bool{false, true, true, true} {
		got, err := f.Level()
		require.NoError(t, err)
		assert.Equal(t, want, got, "read %d", i)
	}
}

func TestFakeButtonNoLevelsUsesPressed(t *testing.T) {
	f := NewFakeButton(nil)

	got, err := f.Level()
	require.NoError(t, err)
	assert.False(t, got)

	f.Pressed = true
	got, err = f.Level()
	require.NoError(t, err)
	assert.True(t, got)
}

func TestFakeButtonError(t *testing.T) {
	f := NewFakeButton([]bool{true})
	f.ReadError = errors.New("simulated error")

	_, err := f.Level()
	assert.EqualError(t, err, "simulated error")
}

func TestFakeButtonReset(t *testing.T) {
	f := NewFakeButton([]bool{true, false})
	f.Level()
	f.Close()
	f.Reset()

	got, _ := f.Level()
	assert.True(t, got)
	assert.False(t, f.Closed)
}

func TestFakeRelayRecordsWrites(t *testing.T) {
	r := NewFakeRelay()
	r.SetError = errors.New("bus fault")

	err := r.SetOutput(true)
	assert.Error(t, err)
	assert.True(t, r.High, "level should follow the write even on error")

	r.SetError = nil
	require.NoError(t, r.SetOutput(false))
	assert.Equal(t, []bool{true, false}, r.Writes)

	r.SetOutput(true)
	require.NoError(t, r.Close())
	assert.False(t, r.High, "Close must leave the relay low")
	assert.True(t, r.Closed)
}

func TestReleasedNeverPressed(t *testing.T) {
	var b Button = Released{}
	for i := 0; i < 3; i++ {
		got, err := b.Level()
		require.NoError(t, err)
		assert.False(t, got)
	}
}
