// Package logic contains the sensor-fusion and timing state machine for the strip.
// This package has NO external dependencies (no GPIO, ADC, MQTT, OS, or time.Sleep).
// Time is always injectable via the Clock interface.
package logic

import "time"

// Clock is a narrow monotonic millisecond counter. Millis wraps around at
// the uint32 boundary, so every elapsed-time check must guard against
// now < last.
type Clock interface {
	Millis() uint32

	// Sleep blocks the caller for d. Only the debounce read and the idle
	// delay sleep.
	Sleep(d time.Duration)
}

// MotionSensor reads the PIR line. true = motion present.
type MotionSensor interface {
	MotionDetected() bool
}

// LightSensor reads the LDR. Higher values are brighter.
type LightSensor interface {
	LightLevel() int
}

// Strip drives the LED strip output line.
type Strip interface {
	// SetStrip drives the output high (on) or low (off).
	SetStrip(on bool)

	// StripOn reports the physical level of the output line.
	StripOn() bool
}

// EventType identifies a diagnostic event.
type EventType string

const (
	EventCalibrated     EventType = "CALIBRATED"
	EventDark           EventType = "DARK"
	EventLight          EventType = "LIGHT"
	EventIntervalFast   EventType = "INTERVAL_FAST"
	EventIntervalSlow   EventType = "INTERVAL_SLOW"
	EventMotionStart    EventType = "MOTION_START"
	EventMotionExtend   EventType = "MOTION_EXTEND"
	EventMotionEnd      EventType = "MOTION_END"
	EventClockResync    EventType = "CLOCK_RESYNC"
	EventStripOn        EventType = "STRIP_ON"
	EventStripOff       EventType = "STRIP_OFF"
	EventWatchdogRepair EventType = "WATCHDOG_REPAIR"
)

// Event is a diagnostic record of something the controller decided.
type Event struct {
	At      uint32 // clock millis when the event happened
	Type    EventType
	Average int  // light average at the time of the event
	StripOn bool // tracked strip state after the event
	Detail  string
}

// Sink receives diagnostic events. Emit must not block the control loop.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Emit calls f(e).
func (f SinkFunc) Emit(e Event) { f(e) }

// Counts tracks totals since startup.
type Counts struct {
	LightSamples    int
	MotionCycles    int
	Extensions      int
	StripOn         int
	StripOff        int
	WatchdogRepairs int
	ClockResyncs    int
}

// State is a point-in-time view of every component, safe to hand to other goroutines.
type State struct {
	Millis           uint32
	Average          int
	Threshold        int
	Dark             bool
	Interval         time.Duration
	ConsecutiveLight int
	MotionActive     bool
	StripOn          bool
	LockedOut        bool
	Calibrated       bool
	Counts           Counts
}

// elapsed returns now-since. ok is false when the clock has gone backwards
// (counter wrap), in which case the caller must resynchronise its timestamp.
func elapsed(now, since uint32) (d time.Duration, ok bool) {
	if now < since {
		return 0, false
	}
	return time.Duration(now-since) * time.Millisecond, true
}
