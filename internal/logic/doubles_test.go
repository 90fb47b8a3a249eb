package logic

import "errors"

type recRelay struct {
	writes []bool
	err    error
}

func (r *recRelay) SetOutput(high bool) error {
	r.writes = append(r.writes, high)
	return r.err
}

type memStore struct {
	cells   map[uint8]byte
	loadErr error
}

func newMemStore() *memStore {
	return &memStore{cells: map[uint8]byte{}}
}

func (m *memStore) LoadByte(addr uint8) (byte, error) {
	if m.loadErr != nil {
		return 0, m.loadErr
	}
	if v, ok := m.cells[addr]; ok {
		return v, nil
	}
	return 0xFF, nil
}

func (m *memStore) StoreByte(addr uint8, b byte) error {
	m.cells[addr] = b
	return nil
}

type stubSensor struct {
	temp, hum float64
	err       error
	reads     int
}

func (s *stubSensor) ReadTemperatureHumidity() (float64, float64, error) {
	s.reads++
	return s.temp, s.hum, s.err
}

var errRead = errors.New("read failed")
