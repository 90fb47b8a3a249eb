package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSamplerInterval(t *testing.T) {
	s := &stubSensor{temp: 12.5, hum: 80}
	sm := NewSampler(s, DefaultSensorInterval)

	sampled, err := sm.Sample(1999)
	require.NoError(t, err)
	assert.False(t, sampled)
	assert.Equal(t, 0, s.reads)

	sampled, err = sm.Sample(2000)
	require.NoError(t, err)
	assert.True(t, sampled)
	assert.Equal(t, Reading{Temperature: 12.5, Humidity: 80, LastUpdated: 2000, Valid: true}, sm.Reading())

	sm.Sample(3999)
	assert.Equal(t, 1, s.reads)
}

func TestSamplerFailureRetainsValues(t *testing.T) {
	s := &stubSensor{temp: 12.5, hum: 80}
	sm := NewSampler(s, DefaultSensorInterval)
	sm.Sample(2000)
	before := sm.Reading()

	s.err = errRead
	s.temp, s.hum = -999, -999
	sampled, err := sm.Sample(4000)
	assert.True(t, sampled)
	assert.ErrorIs(t, err, errRead)

	after := sm.Reading()
	assert.Equal(t, before.Temperature, after.Temperature)
	assert.Equal(t, before.Humidity, after.Humidity)
	assert.True(t, after.Valid)
	assert.Equal(t, Millis(4000), after.LastUpdated, "failed reads still advance the timer")

	// No retry storm: the next read waits a full interval.
	sm.Sample(4001)
	assert.Equal(t, 2, s.reads)
}

func TestSamplerNeverSucceeded(t *testing.T) {
	sm := NewSampler(&stubSensor{err: errRead}, DefaultSensorInterval)
	sm.Sample(2000)
	assert.False(t, sm.Reading().Valid)
	assert.Equal(t, NoSensorText, FormatReading(sm.Reading()))
}
