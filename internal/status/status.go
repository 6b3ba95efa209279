// Package status provides a thread-safe status tracker for the motion-strip daemon.
// It is read by the HTTP handlers and by the MQTT heartbeat.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/motion-strip/internal/board"
	"github.com/sweeney/motion-strip/internal/logic"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	Broker         string
	HTTPPort       string
	ADCPort        string
	HeartbeatMs    int64
	LockoutMs      int64
	FastIntervalMs int64
	SlowIntervalMs int64
	Threshold      int
	Hysteresis     int
	Calibration    string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	SessionID     string
	State         logic.State
	Errors        board.Errors
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	MQTTDropped   int
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time, session ID and config.
func NewTracker(startTime time.Time, sessionID string, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			SessionID: sessionID,
			StartTime: startTime,
			Config:    cfg,
		},
		now: time.Now,
	}
}

// Update stores the controller state and driver error counts.
// Called from the control loop after every tick.
func (t *Tracker) Update(state logic.State, errs board.Errors) {
	t.mu.Lock()
	t.snap.State = state
	t.snap.Errors = errs
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetMQTTDropped records how many events the MQTT sink discarded.
func (t *Tracker) SetMQTTDropped(n int) {
	t.mu.Lock()
	t.snap.MQTTDropped = n
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
