package adc

import "errors"

// FakeReader is a test double that returns scripted readings.
type FakeReader struct {
	// Samples are returned in order; the last one repeats.
	Samples []int
	index   int

	// Reads counts calls to Read, including failed ones.
	Reads int

	// ReadError, if set, will be returned by Read()
	ReadError error

	Closed bool
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples ...int) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
func (f *FakeReader) Read() (int, error) {
	f.Reads++
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	if len(f.Samples) == 0 {
		return 0, errors.New("no samples configured")
	}

	v := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return v, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}
