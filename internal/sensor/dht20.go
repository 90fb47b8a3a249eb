package sensor

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

// DHT20Addr is the fixed I2C address of the DHT20 (AHT20 core).
const DHT20Addr = 0x38

var dht20Trigger = []byte{0xAC, 0x33, 0x00}

// DHT20 reads a DHT20 over I2C without waiting for the conversion.
//
// A measurement takes about 80ms, which is far longer than one loop
// iteration. Each call therefore collects the result of the measurement
// started by the previous call and immediately starts the next one. The
// first call only starts a measurement and reports ErrUnavailable.
type DHT20 struct {
	dev     *i2c.Dev
	pending bool
}

// NewDHT20 creates a driver on bus.
func NewDHT20(bus i2c.Bus) *DHT20 {
	return &DHT20{dev: &i2c.Dev{Addr: DHT20Addr, Bus: bus}}
}

// ReadTemperatureHumidity returns the last completed measurement.
func (d *DHT20) ReadTemperatureHumidity() (float64, float64, error) {
	if !d.pending {
		if err := d.trigger(); err != nil {
			return 0, 0, err
		}
		return 0, 0, ErrUnavailable
	}

	buf := make([]byte, 7)
	if err := d.dev.Tx(nil, buf); err != nil {
		d.pending = false
		return 0, 0, fmt.Errorf("dht20 read: %w", err)
	}
	if buf[0]&0x80 != 0 {
		// Still converting; collect it next time.
		return 0, 0, ErrUnavailable
	}
	d.pending = false

	if crc8(buf[:6]) != buf[6] {
		_ = d.trigger()
		return 0, 0, fmt.Errorf("dht20 crc mismatch: %w", ErrUnavailable)
	}
	temp, hum := decodeDHT20(buf)

	// A failed trigger is retried on the next call.
	_ = d.trigger()
	return temp, hum, nil
}

func (d *DHT20) trigger() error {
	if err := d.dev.Tx(dht20Trigger, nil); err != nil {
		return fmt.Errorf("dht20 trigger: %w", err)
	}
	d.pending = true
	return nil
}

// decodeDHT20 converts the 20-bit humidity and temperature fields.
func decodeDHT20(b []byte) (temp, hum float64) {
	rawHum := uint32(b[1])<<12 | uint32(b[2])<<4 | uint32(b[3])>>4
	rawTemp := uint32(b[3]&0x0F)<<16 | uint32(b[4])<<8 | uint32(b[5])
	hum = float64(rawHum) / (1 << 20) * 100
	temp = float64(rawTemp)/(1<<20)*200 - 50
	return temp, hum
}

// crc8 is CRC-8 with polynomial 0x31 and initial value 0xFF.
func crc8(data []byte) byte {
	crc := byte(0xFF)
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x31
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
