package logic

import "time"

// MotionDetector debounces the PIR line and runs the motion cycle:
// Idle -> Active on motion, extended when motion is still present at the
// checkpoint, back to Idle at the timeout.
type MotionDetector struct {
	cfg    Config
	sensor MotionSensor
	clock  Clock

	active     bool
	cycleStart uint32
}

// NewMotionDetector creates an idle detector.
func NewMotionDetector(cfg Config, sensor MotionSensor, clock Clock) *MotionDetector {
	return &MotionDetector{cfg: cfg, sensor: sensor, clock: clock}
}

// Debounce takes DebounceReads samples spaced evenly across DebounceWindow
// and returns the majority vote. It blocks for the whole window.
func (m *MotionDetector) Debounce() bool {
	spacing := m.cfg.DebounceWindow / time.Duration(m.cfg.DebounceReads)
	count := 0
	for i := 0; i < m.cfg.DebounceReads; i++ {
		if m.sensor.MotionDetected() {
			count++
		}
		m.clock.Sleep(spacing)
	}
	return count > m.cfg.DebounceReads/2
}

// Update advances the motion cycle. Outside the checkpoint window an active
// cycle is not re-read, so motion stopping is only noticed at the timeout.
func (m *MotionDetector) Update(now uint32) []Event {
	if !m.active {
		if m.Debounce() {
			m.active = true
			m.cycleStart = now
			return []Event{{At: now, Type: EventMotionStart}}
		}
		return nil
	}

	d, ok := elapsed(now, m.cycleStart)
	if !ok {
		// Counter wrapped; restart the cycle rather than treat it as a timeout.
		m.cycleStart = now
		return []Event{{At: now, Type: EventClockResync, Detail: "motion cycle"}}
	}

	if d >= m.cfg.MotionTimeout {
		m.active = false
		return []Event{{At: now, Type: EventMotionEnd}}
	}

	if d >= m.cfg.MotionCheckpoint && m.Debounce() {
		m.cycleStart = now
		return []Event{{At: now, Type: EventMotionExtend}}
	}
	return nil
}

// Active reports whether a motion cycle is running.
func (m *MotionDetector) Active() bool { return m.active }
