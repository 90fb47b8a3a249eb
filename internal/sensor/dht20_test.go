package sensor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func dht20Frame(status byte, rawHum, rawTemp uint32) []byte {
	b := []byte{
		status,
		byte(rawHum >> 12),
		byte(rawHum >> 4),
		byte(rawHum<<4) | byte(rawTemp>>16)&0x0F,
		byte(rawTemp >> 8),
		byte(rawTemp),
	}
	return append(b, crc8(b))
}

func TestCRC8CheckValue(t *testing.T) {
	assert.Equal(t, byte(0xF7), crc8([]byte("123456789")))
}

func TestDHT20TwoPhaseRead(t *testing.T) {
	frame := dht20Frame(0x1C, 1<<19, 0x60000) // 50%, 25C
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: DHT20Addr, W: dht20Trigger},
			{Addr: DHT20Addr, R: frame},
			{Addr: DHT20Addr, W: dht20Trigger},
		},
	}
	d := NewDHT20(bus)

	_, _, err := d.ReadTemperatureHumidity()
	assert.ErrorIs(t, err, ErrUnavailable, "first call only triggers")

	temp, hum, err := d.ReadTemperatureHumidity()
	require.NoError(t, err)
	assert.InDelta(t, 25.0, temp, 0.01)
	assert.InDelta(t, 50.0, hum, 0.01)

	require.NoError(t, bus.Close())
}

func TestDHT20BusyKeepsPending(t *testing.T) {
	busy := dht20Frame(0x9C, 0, 0)
	ready := dht20Frame(0x1C, 1<<18, 0x40000) // 25%, 0C
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: DHT20Addr, W: dht20Trigger},
			{Addr: DHT20Addr, R: busy},
			{Addr: DHT20Addr, R: ready},
			{Addr: DHT20Addr, W: dht20Trigger},
		},
	}
	d := NewDHT20(bus)

	d.ReadTemperatureHumidity()
	_, _, err := d.ReadTemperatureHumidity()
	assert.ErrorIs(t, err, ErrUnavailable)

	temp, hum, err := d.ReadTemperatureHumidity()
	require.NoError(t, err)
	assert.InDelta(t, 0.0, temp, 0.01)
	assert.InDelta(t, 25.0, hum, 0.01)
	require.NoError(t, bus.Close())
}

func TestDHT20CRCMismatch(t *testing.T) {
	frame := dht20Frame(0x1C, 1<<19, 0x60000)
	frame[6] ^= 0xFF
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: DHT20Addr, W: dht20Trigger},
			{Addr: DHT20Addr, R: frame},
			{Addr: DHT20Addr, W: dht20Trigger},
		},
	}
	d := NewDHT20(bus)

	d.ReadTemperatureHumidity()
	_, _, err := d.ReadTemperatureHumidity()
	assert.ErrorIs(t, err, ErrUnavailable)
	require.NoError(t, bus.Close())
}

func TestFakeScripted(t *testing.T) {
	boom := errors.New("boom")
	f := NewFake(Sample{Temperature: 20, Humidity: 50}, Sample{Err: boom})

	temp, hum, err := f.ReadTemperatureHumidity()
	require.NoError(t, err)
	assert.Equal(t, 20.0, temp)
	assert.Equal(t, 50.0, hum)

	_, _, err = f.ReadTemperatureHumidity()
	assert.ErrorIs(t, err, boom)
	_, _, err = f.ReadTemperatureHumidity()
	assert.ErrorIs(t, err, boom, "last sample repeats")
	assert.Equal(t, 3, f.Reads)
}

func TestAbsentAlwaysUnavailable(t *testing.T) {
	_, _, err := Absent{}.ReadTemperatureHumidity()
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSimulatedFailEvery(t *testing.T) {
	s := NewSimulated()
	s.FailEvery = 2

	_, _, err := s.ReadTemperatureHumidity()
	assert.NoError(t, err)
	_, _, err = s.ReadTemperatureHumidity()
	assert.ErrorIs(t, err, ErrUnavailable)
}
