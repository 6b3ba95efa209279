package logic

import "time"

// Watchdog periodically compares the intended strip state with the output
// line and re-applies the intended state on mismatch. It never decides the
// state itself.
type Watchdog struct {
	strip     Strip
	interval  time.Duration
	lastCheck uint32
}

// NewWatchdog creates a watchdog whose first check is one interval after Arm.
func NewWatchdog(strip Strip, interval time.Duration) *Watchdog {
	return &Watchdog{strip: strip, interval: interval}
}

// Arm starts the interval at now.
func (w *Watchdog) Arm(now uint32) {
	w.lastCheck = now
}

// Check repairs drift if the interval has elapsed.
func (w *Watchdog) Check(now uint32, intended bool) []Event {
	d, ok := elapsed(now, w.lastCheck)
	if !ok {
		w.lastCheck = now
		return []Event{{At: now, Type: EventClockResync, Detail: "watchdog"}}
	}
	if d < w.interval {
		return nil
	}
	w.lastCheck = now

	observed := w.strip.StripOn()
	if observed == intended {
		return nil
	}
	w.strip.SetStrip(intended)
	return []Event{{
		At:     now,
		Type:   EventWatchdogRepair,
		Detail: "output " + onOff(observed) + ", want " + onOff(intended),
	}}
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
