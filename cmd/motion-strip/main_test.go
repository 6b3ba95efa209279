package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/motion-strip/internal/adc"
	"github.com/sweeney/motion-strip/internal/board"
	"github.com/sweeney/motion-strip/internal/config"
	"github.com/sweeney/motion-strip/internal/gpio"
	"github.com/sweeney/motion-strip/internal/logic"
	"github.com/sweeney/motion-strip/internal/mqtt"
	"github.com/sweeney/motion-strip/internal/status"
)

// TestEnvVarNames verifies the env var constants match what pi-helper writes
// to /run/pi-helper.env.
func TestEnvVarNames(t *testing.T) {
	want := map[string]string{
		"NETWORK_TYPE":        envNetworkType,
		"NETWORK_IP":          envNetworkIP,
		"NETWORK_STATUS":      envNetworkStatus,
		"NETWORK_GATEWAY":     envNetworkGateway,
		"NETWORK_WIFI_STATUS": envNetworkWifiStatus,
		"NETWORK_WIFI_SSID":   envNetworkWifiSSID,
	}
	for canonical, got := range want {
		if got != canonical {
			t.Errorf("env var constant: got %q, want %q", got, canonical)
		}
	}
}

func TestReadNetworkInfoAllSet(t *testing.T) {
	t.Setenv(envNetworkType, "wifi")
	t.Setenv(envNetworkIP, "192.168.1.100")
	t.Setenv(envNetworkStatus, "connected")
	t.Setenv(envNetworkGateway, "192.168.1.1")
	t.Setenv(envNetworkWifiStatus, "connected")
	t.Setenv(envNetworkWifiSSID, "MyNetwork")

	info := readNetworkInfo()
	require.NotNil(t, info)
	assert.Equal(t, status.NetworkInfo{
		Type:       "wifi",
		IP:         "192.168.1.100",
		Status:     "connected",
		Gateway:    "192.168.1.1",
		WifiStatus: "connected",
		SSID:       "MyNetwork",
	}, *info)
}

func TestReadNetworkInfoNoneSet(t *testing.T) {
	t.Setenv(envNetworkStatus, "")
	if info := readNetworkInfo(); info != nil {
		t.Errorf("expected nil when NETWORK_STATUS is unset, got %+v", info)
	}
}

func TestSignalName(t *testing.T) {
	assert.Equal(t, "SIGINT", signalName(syscall.SIGINT))
	assert.Equal(t, "SIGTERM", signalName(syscall.SIGTERM))
	assert.Equal(t, "UNKNOWN", signalName(syscall.SIGHUP))
}

func TestStatusConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Controller.Lockout = 6 * time.Millisecond

	sc := statusConfig(cfg)
	assert.Equal(t, int64(6), sc.LockoutMs)
	assert.Equal(t, int64(900000), sc.HeartbeatMs)
	assert.Equal(t, "fixed", sc.Calibration)
	assert.Equal(t, "/dev/ttyACM0", sc.ADCPort)
}

func TestPrintState(t *testing.T) {
	out := gpio.NewFakeOutput()
	b := board.New(gpio.NewFakeInput(true), out, adc.NewFakeReader(412), adc.DefaultMax)

	var buf bytes.Buffer
	printState(&buf, b)
	assert.Equal(t, "PIR: ON, light: 412, strip: OFF\n", buf.String())
	assert.Empty(t, out.Writes, "print-state must not drive the strip")
}

// --- runLoop tests ---

type rig struct {
	pir     *gpio.FakeInput
	strip   *gpio.FakeOutput
	ldr     *adc.FakeReader
	pub     *mqtt.FakePublisher
	tracker *status.Tracker
	board   *board.Board
	deps    loopDeps
	sig     chan os.Signal
}

// newRig builds a loop over fake drivers with millisecond-scale timings.
func newRig(t *testing.T, motion bool, level int, withMQTT bool) *rig {
	t.Helper()
	r := &rig{
		pir:     gpio.NewFakeInput(motion),
		strip:   gpio.NewFakeOutput(),
		ldr:     adc.NewFakeReader(level),
		tracker: status.NewTracker(time.Now(), "test-session", status.Config{Broker: "tcp://test:1883"}),
		sig:     make(chan os.Signal, 1),
	}
	r.board = board.New(r.pir, r.strip, r.ldr, adc.DefaultMax)

	var sink logic.Sink
	r.deps = loopDeps{drivers: r.board, tracker: r.tracker, now: time.Now}
	if withMQTT {
		r.pub = mqtt.NewFakePublisher()
		r.pub.Connected = true
		r.deps.publisher = r.pub
		r.deps.mqttStatus = r.pub
		r.deps.sink = mqtt.NewSink(r.pub, 16, time.Now)
		sink = r.deps.sink
	}
	r.setSink(t, sink)
	return r
}

// setSink rebuilds the controller so that it emits into sink.
func (r *rig) setSink(t *testing.T, sink logic.Sink) {
	t.Helper()
	lc := logic.DefaultConfig()
	lc.DebounceWindow = 3 * time.Millisecond
	lc.IdleDelay = time.Millisecond
	ctrl, err := logic.NewController(lc, board.NewSystemClock(), r.board, r.board, r.board, sink)
	require.NoError(t, err)
	r.deps.ctrl = ctrl
}

// run starts the loop, waits until cond holds for the tracker snapshot, then
// sends sig and waits for the loop to return.
func (r *rig) run(t *testing.T, sig os.Signal, cond func(status.Snapshot) bool) {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- runLoop(r.deps, r.sig) }()

	deadline := time.Now().Add(5 * time.Second)
	for !cond(r.tracker.Snapshot()) {
		if time.Now().After(deadline) {
			r.sig <- sig
			<-done
			t.Fatal("condition not reached before deadline")
		}
		time.Sleep(time.Millisecond)
	}

	r.sig <- sig
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runLoop did not return after signal")
	}
}

func stripOn(s status.Snapshot) bool { return s.State.StripOn }

func TestRunLoopMotionInDarkTurnsStripOn(t *testing.T) {
	r := newRig(t, true, 0, true)
	r.run(t, syscall.SIGTERM, stripOn)

	assert.True(t, r.strip.Level, "strip line should be high")

	var types []logic.EventType
	for _, ev := range r.pub.Events {
		types = append(types, ev.Event.Type)
	}
	assert.Contains(t, types, logic.EventCalibrated)
	assert.Contains(t, types, logic.EventMotionStart)
	assert.Contains(t, types, logic.EventStripOn)
}

func TestRunLoopStartupAndShutdown(t *testing.T) {
	r := newRig(t, false, 800, true)
	r.run(t, syscall.SIGINT, func(s status.Snapshot) bool { return s.State.Calibrated })

	require.GreaterOrEqual(t, len(r.pub.SystemEvents), 2)
	first := r.pub.SystemEvents[0]
	last := r.pub.SystemEvents[len(r.pub.SystemEvents)-1]

	assert.Equal(t, "STARTUP", first.Event)
	assert.True(t, first.Retained)
	assert.Equal(t, "SHUTDOWN", last.Event)
	assert.Equal(t, "SIGINT", last.Reason)
	assert.True(t, last.Retained)

	var parsed status.StatusJSON
	require.NoError(t, json.Unmarshal(r.pub.SystemPayloads[len(r.pub.SystemPayloads)-1], &parsed))
	assert.Equal(t, "SHUTDOWN", parsed.Status.Event)
	assert.Equal(t, "test-session", parsed.Status.SessionID)
	assert.Equal(t, "LIGHT", parsed.Status.Light)
	assert.True(t, parsed.Status.MQTT.Connected)

	assert.Len(t, r.strip.Writes, 1, "bright room: only the startup sync write")
	assert.Zero(t, r.pir.Reads, "PIR must not be read while bright")
}

func TestRunLoopPublishesEventsFromFinalTick(t *testing.T) {
	r := newRig(t, true, 0, true)

	// The first event asks for shutdown and reaches the MQTT sink only
	// after the signal has been handled, as an event late in a tick would.
	var emitted int
	var once sync.Once
	r.setSink(t, logic.SinkFunc(func(e logic.Event) {
		emitted++
		once.Do(func() {
			r.sig <- syscall.SIGTERM
			time.Sleep(20 * time.Millisecond)
		})
		r.deps.sink.Emit(e)
	}))

	done := make(chan error, 1)
	go func() { done <- runLoop(r.deps, r.sig) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runLoop did not return after signal")
	}

	require.Positive(t, emitted)
	assert.Equal(t, emitted, r.pub.EventCount(), "every emitted event is published")
	assert.Zero(t, r.deps.sink.Dropped())
	last := r.pub.SystemEvents[len(r.pub.SystemEvents)-1]
	assert.Equal(t, "SHUTDOWN", last.Event)
}

func TestRunLoopWithoutMQTT(t *testing.T) {
	r := newRig(t, true, 0, false)
	r.run(t, syscall.SIGTERM, stripOn)

	assert.True(t, r.strip.Level)
	assert.False(t, r.tracker.Snapshot().MQTTConnected)
}

func TestRunLoopPublishErrorsAreNotFatal(t *testing.T) {
	r := newRig(t, true, 0, true)
	r.pub.PublishError = errors.New("broker gone")
	r.pub.PublishSystemError = errors.New("broker gone")

	r.run(t, syscall.SIGTERM, stripOn)

	assert.True(t, r.strip.Level)
	assert.Empty(t, r.pub.Events)
	assert.Empty(t, r.pub.SystemEvents)
}

func TestRunLoopTracksDriverErrors(t *testing.T) {
	r := newRig(t, false, 0, false)
	r.ldr.ReadError = errors.New("bridge unplugged")

	r.run(t, syscall.SIGTERM, func(s status.Snapshot) bool {
		return s.Errors.LightReads > 0
	})

	assert.False(t, r.strip.Level)
}

func TestRunLoopHeartbeat(t *testing.T) {
	r := newRig(t, false, 800, true)

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	var calls int
	// called only from the loop goroutine
	r.deps.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}
	r.deps.heartbeat = status.NewHeartbeat(10*time.Minute, base)

	// Every tick advances the fake wall clock by a minute.
	r.run(t, syscall.SIGTERM, func(s status.Snapshot) bool {
		return s.State.Millis >= 300
	})

	var beats int
	for _, ev := range r.pub.SystemEvents {
		if ev.Event == "HEARTBEAT" {
			beats++
			assert.False(t, ev.Retained)
		}
	}
	require.GreaterOrEqual(t, calls, 10)
	assert.Positive(t, beats)
	assert.LessOrEqual(t, beats, calls/10)
}
