// Package board adapts the GPIO and ADC drivers to the controller's sensor
// and strip interfaces. Driver errors are logged and absorbed here so the
// control loop never sees them: reads fall back to the last good value and
// failed writes are retried by the next decision or watchdog pass.
package board

import (
	"log"
	"sync"

	"github.com/sweeney/motion-strip/internal/adc"
	"github.com/sweeney/motion-strip/internal/gpio"
)

// Errors counts driver failures since startup.
type Errors struct {
	MotionReads int
	LightReads  int
	StripWrites int
	StripReads  int
	Clamped     int
}

// Board implements logic.MotionSensor, logic.LightSensor and logic.Strip.
type Board struct {
	pir      gpio.Input
	strip    gpio.Output
	ldr      adc.Reader
	maxLevel int

	lastMotion bool
	lastLevel  int
	lastStrip  bool

	mu     sync.Mutex // guards errors; read from the status goroutine
	errors Errors
}

// New creates a Board. maxLevel is the full-scale ADC value; readings outside
// [0, maxLevel] are clamped.
func New(pir gpio.Input, strip gpio.Output, ldr adc.Reader, maxLevel int) *Board {
	return &Board{pir: pir, strip: strip, ldr: ldr, maxLevel: maxLevel}
}

// MotionDetected reads the PIR line.
func (b *Board) MotionDetected() bool {
	v, err := b.pir.Read()
	if err != nil {
		b.count(func(e *Errors) { e.MotionReads++ })
		log.Printf("pir read error: %v", err)
		return b.lastMotion
	}
	b.lastMotion = v
	return v
}

// LightLevel reads the LDR through the ADC bridge.
func (b *Board) LightLevel() int {
	v, err := b.ldr.Read()
	if err != nil {
		b.count(func(e *Errors) { e.LightReads++ })
		log.Printf("ldr read error: %v", err)
		return b.lastLevel
	}
	if v < 0 || v > b.maxLevel {
		b.count(func(e *Errors) { e.Clamped++ })
		log.Printf("ldr reading %d outside [0, %d], clamping", v, b.maxLevel)
		if v < 0 {
			v = 0
		} else {
			v = b.maxLevel
		}
	}
	b.lastLevel = v
	return v
}

// SetStrip drives the strip output.
func (b *Board) SetStrip(on bool) {
	if err := b.strip.Write(on); err != nil {
		b.count(func(e *Errors) { e.StripWrites++ })
		log.Printf("strip write error: %v", err)
		return
	}
	b.lastStrip = on
}

// StripOn reads back the strip output level.
func (b *Board) StripOn() bool {
	v, err := b.strip.Value()
	if err != nil {
		b.count(func(e *Errors) { e.StripReads++ })
		log.Printf("strip read error: %v", err)
		return b.lastStrip
	}
	return v
}

// Errors returns a copy of the error counters.
func (b *Board) Errors() Errors {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errors
}

// Close releases all drivers, strip first so it is left off.
func (b *Board) Close() error {
	var first error
	for _, c := range []interface{ Close() error }{b.strip, b.pir, b.ldr} {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (b *Board) count(f func(*Errors)) {
	b.mu.Lock()
	f(&b.errors)
	b.mu.Unlock()
}
