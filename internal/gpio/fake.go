package gpio

import "errors"

// FakeInput is a test double that returns scripted line levels.
type FakeInput struct {
	// Samples contains scripted levels to return.
	// Each call to Read() consumes the next sample.
	Samples []bool

	// index tracks current position in Samples
	index int

	// Reads counts calls to Read
	Reads int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeInput creates a FakeInput with the given samples.
func NewFakeInput(samples ...bool) *FakeInput {
	return &FakeInput{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeInput) Read() (bool, error) {
	f.Reads++
	if f.ReadError != nil {
		return false, f.ReadError
	}

	if len(f.Samples) == 0 {
		return false, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return sample, nil
}

// Close marks the input as closed.
func (f *FakeInput) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds to the first sample.
func (f *FakeInput) Reset() {
	f.index = 0
	f.Reads = 0
	f.Closed = false
}

// FakeOutput records writes. Level is the simulated line and can be set
// directly to simulate something else driving the pin.
type FakeOutput struct {
	Level  bool
	Writes []bool

	// WriteError, if set, will be returned by Write() and the level is unchanged.
	WriteError error

	// ValueError, if set, will be returned by Value().
	ValueError error

	Closed bool
}

// NewFakeOutput creates a FakeOutput that starts low.
func NewFakeOutput() *FakeOutput {
	return &FakeOutput{}
}

// Write records the write and sets Level.
func (f *FakeOutput) Write(high bool) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Writes = append(f.Writes, high)
	f.Level = high
	return nil
}

// Value returns Level.
func (f *FakeOutput) Value() (bool, error) {
	if f.ValueError != nil {
		return false, f.ValueError
	}
	return f.Level, nil
}

// Close drives the line low and marks the output closed.
func (f *FakeOutput) Close() error {
	f.Level = false
	f.Closed = true
	return nil
}
