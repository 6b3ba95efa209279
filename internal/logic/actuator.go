package logic

import "time"

// Actuator owns the tracked strip state and only writes the output on change.
type Actuator struct {
	strip   Strip
	lockout time.Duration

	enabled     bool
	lastEnabled uint32
	everEnabled bool
}

// NewActuator creates an actuator that believes the strip is off.
func NewActuator(strip Strip, lockout time.Duration) *Actuator {
	return &Actuator{strip: strip, lockout: lockout}
}

// Sync drives the output to the tracked state unconditionally.
func (a *Actuator) Sync() {
	a.strip.SetStrip(a.enabled)
}

// Apply moves the strip to desired, writing the output only when it differs
// from the tracked state.
func (a *Actuator) Apply(desired bool, now uint32) []Event {
	if desired == a.enabled {
		return nil
	}
	a.strip.SetStrip(desired)
	a.enabled = desired
	if desired {
		a.lastEnabled = now
		a.everEnabled = true
		return []Event{{At: now, Type: EventStripOn}}
	}
	return []Event{{At: now, Type: EventStripOff}}
}

// InLockout reports whether light sampling must be skipped because the strip
// was switched on less than the lockout duration ago.
func (a *Actuator) InLockout(now uint32) bool {
	if !a.everEnabled || a.lockout <= 0 {
		return false
	}
	d, ok := elapsed(now, a.lastEnabled)
	if !ok {
		a.lastEnabled = now
		return true
	}
	return d < a.lockout
}

// Enabled reports the tracked (intended) strip state.
func (a *Actuator) Enabled() bool { return a.enabled }
