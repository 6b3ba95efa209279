// Package gpio provides digital line access with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementations allow testing without hardware.
package gpio

// Input reads a digital input line.
type Input interface {
	// Read returns true when the line is high.
	Read() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Output drives a digital output line.
type Output interface {
	// Write drives the line high (true) or low (false).
	Write(high bool) error

	// Value returns the current level of the line.
	Value() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Default chip and pin definitions (BCM numbering).
const (
	DefaultChip     = "gpiochip0"
	DefaultPinPIR   = 17 // PIR motion sensor
	DefaultPinStrip = 27 // LED strip driver (MOSFET gate)
)
