//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealInput reads a line from actual hardware using the Linux GPIO character device.
type RealInput struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealInput requests pin on chip as an input with pull-down, so an
// unplugged PIR reads as "no motion".
func NewRealInput(chipName string, pin int) (*RealInput, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request input pin %d: %w", pin, err)
	}

	return &RealInput{chip: chip, line: line}, nil
}

// Read returns true when the line is high.
func (r *RealInput) Read() (bool, error) {
	v, err := r.line.Value()
	if err != nil {
		return false, fmt.Errorf("read input pin: %w", err)
	}
	return v == 1, nil
}

// Close releases the line and chip.
func (r *RealInput) Close() error {
	return closeLine(r.chip, r.line, "input")
}

// RealOutput drives a line on actual hardware.
type RealOutput struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealOutput requests pin on chip as an output, initially low (strip off).
func NewRealOutput(chipName string, pin int) (*RealOutput, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request output pin %d: %w", pin, err)
	}

	return &RealOutput{chip: chip, line: line}, nil
}

// Write drives the line.
func (o *RealOutput) Write(high bool) error {
	v := 0
	if high {
		v = 1
	}
	if err := o.line.SetValue(v); err != nil {
		return fmt.Errorf("write output pin: %w", err)
	}
	return nil
}

// Value reads back the line level.
func (o *RealOutput) Value() (bool, error) {
	v, err := o.line.Value()
	if err != nil {
		return false, fmt.Errorf("read output pin: %w", err)
	}
	return v == 1, nil
}

// Close drives the strip off and releases the line.
func (o *RealOutput) Close() error {
	var errs []error
	if o.line != nil {
		if err := o.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("drive output low: %w", err))
		}
	}
	if err := closeLine(o.chip, o.line, "output"); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// closeLine reconfigures the line to input with pull-down (matching Pi boot
// defaults) before closing, so nothing is left driving the pin.
func closeLine(chip *gpiocdev.Chip, line *gpiocdev.Line, name string) error {
	var errs []error

	if line != nil {
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s pin: %w", name, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", name, err))
		}
	}
	if chip != nil {
		if err := chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
