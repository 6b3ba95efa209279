package logic

import (
	"context"
	"fmt"
)

// Controller is the cooperative scheduler. It owns every component and runs
// them in a fixed order from a single goroutine; that ordering is the only
// synchronisation the components need.
type Controller struct {
	cfg   Config
	clock Clock
	sink  Sink

	light    *LightClassifier
	motion   *MotionDetector
	actuator *Actuator
	watchdog *Watchdog

	lockedOut bool
	counts    Counts
}

// NewController wires the components to their collaborators. A nil sink
// discards events.
func NewController(cfg Config, clock Clock, motion MotionSensor, light LightSensor, strip Strip, sink Sink) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid controller config: %w", err)
	}
	if sink == nil {
		sink = SinkFunc(func(Event) {})
	}
	return &Controller{
		cfg:      cfg,
		clock:    clock,
		sink:     sink,
		light:    NewLightClassifier(cfg, light, clock),
		motion:   NewMotionDetector(cfg, motion, clock),
		actuator: NewActuator(strip, cfg.Lockout),
		watchdog: NewWatchdog(strip, cfg.WatchdogInterval),
	}, nil
}

// Start forces the strip off, calibrates the light classifier and arms the
// watchdog. It must be called once before the first Tick.
func (c *Controller) Start() {
	c.actuator.Sync()
	now := c.clock.Millis()
	c.counts.LightSamples++
	c.emit(c.light.Calibrate(now))
	c.watchdog.Arm(now)
}

// Tick runs one scheduler iteration without the idle delay.
func (c *Controller) Tick() {
	now := c.clock.Millis()

	c.lockedOut = c.actuator.InLockout(now)
	if !c.lockedOut && c.light.Due(now) {
		c.counts.LightSamples++
		c.emit(c.light.Sample(now))
	}

	if !c.light.Dark() {
		c.emit(c.actuator.Apply(false, now))
	} else {
		c.emit(c.motion.Update(now))
		c.emit(c.actuator.Apply(c.motion.Active(), now))
	}

	c.emit(c.watchdog.Check(c.clock.Millis(), c.actuator.Enabled()))
}

// Run calls Start, then Tick followed by the idle delay until ctx is done.
// after, if non-nil, receives the state at the end of every iteration.
func (c *Controller) Run(ctx context.Context, after func(State)) error {
	c.Start()
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		c.Tick()
		if after != nil {
			after(c.State())
		}
		c.clock.Sleep(c.cfg.IdleDelay)
	}
}

// State returns a snapshot of all component state.
func (c *Controller) State() State {
	return State{
		Millis:           c.clock.Millis(),
		Average:          c.light.Average(),
		Threshold:        c.light.Threshold(),
		Dark:             c.light.Dark(),
		Interval:         c.light.Interval(),
		ConsecutiveLight: c.light.ConsecutiveLight(),
		MotionActive:     c.motion.Active(),
		StripOn:          c.actuator.Enabled(),
		LockedOut:        c.lockedOut,
		Calibrated:       c.light.calibrated,
		Counts:           c.counts,
	}
}

func (c *Controller) emit(events []Event) {
	for _, e := range events {
		e.Average = c.light.Average()
		e.StripOn = c.actuator.Enabled()

		switch e.Type {
		case EventMotionStart:
			c.counts.MotionCycles++
		case EventMotionExtend:
			c.counts.Extensions++
		case EventStripOn:
			c.counts.StripOn++
		case EventStripOff:
			c.counts.StripOff++
		case EventWatchdogRepair:
			c.counts.WatchdogRepairs++
		case EventClockResync:
			c.counts.ClockResyncs++
		}

		c.sink.Emit(e)
	}
}
