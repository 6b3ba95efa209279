package status

import "time"

// Heartbeat decides when a periodic status message is due. It runs on wall
// time, unlike the controller, since heartbeats are only observability.
type Heartbeat struct {
	interval time.Duration
	last     time.Time
}

// NewHeartbeat creates a Heartbeat whose first beat is one interval after start.
// A zero or negative interval disables it.
func NewHeartbeat(interval time.Duration, start time.Time) *Heartbeat {
	return &Heartbeat{interval: interval, last: start}
}

// Due reports whether a heartbeat should be sent at now and, if so, starts
// the next interval.
func (h *Heartbeat) Due(now time.Time) bool {
	if h.interval <= 0 {
		return false
	}
	if now.Before(h.last) {
		// wall clock stepped backwards
		h.last = now
		return false
	}
	if now.Sub(h.last) < h.interval {
		return false
	}
	h.last = now
	return true
}
