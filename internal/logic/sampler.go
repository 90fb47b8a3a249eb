package logic

// DefaultSensorInterval is the time between sensor reads.
const DefaultSensorInterval Millis = 2000

// Sampler refreshes the cached reading on its own interval.
type Sampler struct {
	sensor   Sensor
	interval Millis
	reading  Reading
}

// NewSampler creates a sampler with no reading yet.
func NewSampler(sensor Sensor, interval Millis) *Sampler {
	return &Sampler{sensor: sensor, interval: interval}
}

// Sample reads the sensor if the interval has elapsed. A failed read keeps
// the previous values but still advances LastUpdated, so failures are not
// retried on every iteration. The read error is returned for diagnostics.
func (s *Sampler) Sample(now Millis) (sampled bool, err error) {
	if Elapsed(now, s.reading.LastUpdated) < s.interval {
		return false, nil
	}
	s.reading.LastUpdated = now
	t, h, err := s.sensor.ReadTemperatureHumidity()
	if err != nil {
		return true, err
	}
	s.reading.Temperature = t
	s.reading.Humidity = h
	s.reading.Valid = true
	return true, nil
}

// Reading returns the cached reading.
func (s *Sampler) Reading() Reading {
	return s.reading
}
