package sensor

// Sample is one scripted reading. Err, if set, is returned instead of the
// values.
type Sample struct {
	Temperature float64
	Humidity    float64
	Err         error
}

// Fake is a test double that returns scripted samples.
type Fake struct {
	// Samples contains scripted readings. Each read consumes the next one;
	// the last one repeats once they are exhausted.
	Samples []Sample

	index int

	// Reads counts calls to ReadTemperatureHumidity.
	Reads int
}

// NewFake creates a Fake with the given samples.
func NewFake(samples ...Sample) *Fake {
	return &Fake{Samples: samples}
}

// ReadTemperatureHumidity returns the next scripted sample.
func (f *Fake) ReadTemperatureHumidity() (float64, float64, error) {
	f.Reads++
	if len(f.Samples) == 0 {
		return 0, 0, ErrUnavailable
	}
	s := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	if s.Err != nil {
		return 0, 0, s.Err
	}
	return s.Temperature, s.Humidity, nil
}
