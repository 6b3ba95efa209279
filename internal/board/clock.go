package board

import "time"

// SystemClock is a millisecond counter since construction. Like a
// microcontroller millis() it wraps after about 49.7 days.
type SystemClock struct {
	start time.Time
}

// NewSystemClock starts the counter at zero.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Millis returns milliseconds since start, truncated to 32 bits.
func (c *SystemClock) Millis() uint32 {
	return uint32(time.Since(c.start).Milliseconds())
}

// Sleep pauses the calling goroutine.
func (c *SystemClock) Sleep(d time.Duration) {
	time.Sleep(d)
}
