package logic

import (
	"fmt"
	"time"
)

// CalibrationMode selects how the light threshold is chosen at startup.
type CalibrationMode string

const (
	// CalibrateFixed uses Config.Threshold as-is.
	CalibrateFixed CalibrationMode = "fixed"
	// CalibrateSampled averages a burst of readings at startup and adds
	// Config.CalibrationOffset. It runs once; there is no learning afterwards.
	CalibrateSampled CalibrationMode = "sampled"
)

// Config holds every timing and threshold constant of the controller.
type Config struct {
	DebounceWindow time.Duration
	DebounceReads  int

	// MotionCheckpoint is where the [checkpoint, timeout) extension window
	// opens, measured from the start of the motion cycle.
	MotionCheckpoint time.Duration
	MotionTimeout    time.Duration

	BufferSize int
	Threshold  int
	Hysteresis int

	Calibration        CalibrationMode
	CalibrationSamples int
	CalibrationSpacing time.Duration
	CalibrationOffset  int

	FastInterval time.Duration
	SlowInterval time.Duration
	SlowAfter    int

	// Lockout is how long light sampling is suppressed after the strip is
	// switched on, so the strip's own light is not read as daylight.
	Lockout time.Duration

	WatchdogInterval time.Duration
	IdleDelay        time.Duration
}

// DefaultConfig returns the calibrated constants for the reference install.
func DefaultConfig() Config {
	return Config{
		DebounceWindow:     200 * time.Millisecond,
		DebounceReads:      3,
		MotionCheckpoint:   4000 * time.Millisecond,
		MotionTimeout:      5000 * time.Millisecond,
		BufferSize:         3,
		Threshold:          30,
		Hysteresis:         20,
		Calibration:        CalibrateFixed,
		CalibrationSamples: 10,
		CalibrationSpacing: 100 * time.Millisecond,
		CalibrationOffset:  0,
		FastInterval:       1000 * time.Millisecond,
		SlowInterval:       10000 * time.Millisecond,
		SlowAfter:          5,
		Lockout:            6 * time.Second,
		WatchdogInterval:   30000 * time.Millisecond,
		IdleDelay:          300 * time.Millisecond,
	}
}

// Validate reports the first inconsistent value.
func (c Config) Validate() error {
	switch {
	case c.DebounceReads < 1:
		return fmt.Errorf("debounce reads must be at least 1, got %d", c.DebounceReads)
	case c.DebounceWindow < 0:
		return fmt.Errorf("debounce window must not be negative, got %v", c.DebounceWindow)
	case c.MotionTimeout <= 0:
		return fmt.Errorf("motion timeout must be positive, got %v", c.MotionTimeout)
	case c.MotionCheckpoint < 0 || c.MotionCheckpoint >= c.MotionTimeout:
		return fmt.Errorf("motion checkpoint %v must be within [0, %v)", c.MotionCheckpoint, c.MotionTimeout)
	case c.BufferSize < 1:
		return fmt.Errorf("buffer size must be at least 1, got %d", c.BufferSize)
	case c.Hysteresis < 0:
		return fmt.Errorf("hysteresis must not be negative, got %d", c.Hysteresis)
	case c.FastInterval <= 0 || c.SlowInterval <= 0:
		return fmt.Errorf("light intervals must be positive, got fast=%v slow=%v", c.FastInterval, c.SlowInterval)
	case c.SlowAfter < 1:
		return fmt.Errorf("slow-after count must be at least 1, got %d", c.SlowAfter)
	case c.Lockout < 0:
		return fmt.Errorf("lockout must not be negative, got %v", c.Lockout)
	case c.WatchdogInterval <= 0:
		return fmt.Errorf("watchdog interval must be positive, got %v", c.WatchdogInterval)
	case c.IdleDelay < 0:
		return fmt.Errorf("idle delay must not be negative, got %v", c.IdleDelay)
	}

	switch c.Calibration {
	case CalibrateFixed:
	case CalibrateSampled:
		if c.CalibrationSamples < 1 {
			return fmt.Errorf("calibration samples must be at least 1, got %d", c.CalibrationSamples)
		}
	default:
		return fmt.Errorf("unknown calibration mode %q (must be fixed or sampled)", c.Calibration)
	}
	return nil
}
