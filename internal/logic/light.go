package logic

import (
	"fmt"
	"time"
)

// LightClassifier smooths LDR readings and classifies them as dark or light
// with a Schmitt-trigger band around the threshold. It also adapts how often
// it wants to be sampled.
type LightClassifier struct {
	cfg    Config
	sensor LightSensor
	clock  Clock
	ring   *sampleRing

	threshold int
	average   int
	dark      bool

	interval         time.Duration
	consecutiveLight int
	lastCheck        uint32
	calibrated       bool
}

// NewLightClassifier creates a classifier in the light state, polling fast.
func NewLightClassifier(cfg Config, sensor LightSensor, clock Clock) *LightClassifier {
	return &LightClassifier{
		cfg:       cfg,
		sensor:    sensor,
		clock:     clock,
		ring:      newSampleRing(cfg.BufferSize),
		threshold: cfg.Threshold,
		interval:  cfg.FastInterval,
	}
}

// Calibrate picks the threshold and runs one classification pass so that
// Dark is meaningful before the first scheduler tick.
func (l *LightClassifier) Calibrate(now uint32) []Event {
	if l.cfg.Calibration == CalibrateSampled {
		sum := 0
		for i := 0; i < l.cfg.CalibrationSamples; i++ {
			sum += l.sensor.LightLevel()
			if i < l.cfg.CalibrationSamples-1 {
				l.clock.Sleep(l.cfg.CalibrationSpacing)
			}
		}
		l.threshold = sum/l.cfg.CalibrationSamples + l.cfg.CalibrationOffset
	}
	l.calibrated = true

	events := []Event{{
		At:     now,
		Type:   EventCalibrated,
		Detail: fmt.Sprintf("mode=%s threshold=%d hysteresis=%d", l.cfg.Calibration, l.threshold, l.cfg.Hysteresis),
	}}
	return append(events, l.Sample(now)...)
}

// Due reports whether the adaptive interval has elapsed since the last sample.
func (l *LightClassifier) Due(now uint32) bool {
	d, ok := elapsed(now, l.lastCheck)
	if !ok {
		l.lastCheck = now
		return false
	}
	return d >= l.interval
}

// Sample takes one reading and updates the average, the dark state and
// the polling interval.
func (l *LightClassifier) Sample(now uint32) []Event {
	l.lastCheck = now
	l.ring.push(l.sensor.LightLevel())
	l.average = l.ring.average()

	var events []Event
	if !l.dark && l.average <= l.threshold-l.cfg.Hysteresis {
		l.dark = true
		events = append(events, l.event(now, EventDark))
	} else if l.dark && l.average >= l.threshold+l.cfg.Hysteresis {
		l.dark = false
		events = append(events, l.event(now, EventLight))
	}

	if l.dark {
		l.consecutiveLight = 0
		if l.interval != l.cfg.FastInterval {
			l.interval = l.cfg.FastInterval
			events = append(events, l.event(now, EventIntervalFast))
		}
		return events
	}

	l.consecutiveLight++
	if l.interval == l.cfg.FastInterval && l.consecutiveLight >= l.cfg.SlowAfter {
		l.interval = l.cfg.SlowInterval
		events = append(events, l.event(now, EventIntervalSlow))
	}
	return events
}

func (l *LightClassifier) event(now uint32, t EventType) Event {
	return Event{At: now, Type: t, Average: l.average}
}

// Dark reports the current classification.
func (l *LightClassifier) Dark() bool { return l.dark }

// Average returns the last computed moving average.
func (l *LightClassifier) Average() int { return l.average }

// Threshold returns the active threshold.
func (l *LightClassifier) Threshold() int { return l.threshold }

// Interval returns the current polling interval.
func (l *LightClassifier) Interval() time.Duration { return l.interval }

// ConsecutiveLight returns how many light readings have been seen in a row.
func (l *LightClassifier) ConsecutiveLight() int { return l.consecutiveLight }
