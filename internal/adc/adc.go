// Package adc reads the light sensor through an analog-to-digital bridge.
package adc

// Reader takes one analog reading.
type Reader interface {
	// Read returns a raw reading in the bridge's native range (0..Max).
	Read() (int, error)

	// Close releases the underlying device.
	Close() error
}

// DefaultMax is the full-scale value of a 10-bit converter.
const DefaultMax = 1023
