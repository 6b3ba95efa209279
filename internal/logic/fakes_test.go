package logic

import "time"

// fakeClock is a manually driven millisecond counter. Sleep advances it.
type fakeClock struct {
	ms     uint32
	sleeps []time.Duration
}

func (c *fakeClock) Millis() uint32 { return c.ms }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.ms += uint32(d / time.Millisecond)
}

// fakeLight returns level on every read and counts reads.
type fakeLight struct {
	level int
	reads int
}

func (f *fakeLight) LightLevel() int {
	f.reads++
	return f.level
}

// scriptedLight returns levels in order, repeating the last one.
type scriptedLight struct {
	levels []int
	reads  int
}

func (s *scriptedLight) LightLevel() int {
	i := s.reads
	if i >= len(s.levels) {
		i = len(s.levels) - 1
	}
	s.reads++
	return s.levels[i]
}

// scriptedMotion returns values in order, repeating the last one.
type scriptedMotion struct {
	values []bool
	reads  int
}

func (s *scriptedMotion) MotionDetected() bool {
	i := s.reads
	if i >= len(s.values) {
		i = len(s.values) - 1
	}
	s.reads++
	return s.values[i]
}

// fakeStrip records writes. level is the "physical" line and can be forced
// by tests to simulate drift.
type fakeStrip struct {
	level  bool
	writes []bool
}

func (f *fakeStrip) SetStrip(on bool) {
	f.writes = append(f.writes, on)
	f.level = on
}

func (f *fakeStrip) StripOn() bool { return f.level }

func eventTypes(events []Event) []EventType {
	var out []EventType
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}

func hasEvent(events []Event, t EventType) bool {
	for _, e := range events {
		if e.Type == t {
			return true
		}
	}
	return false
}
