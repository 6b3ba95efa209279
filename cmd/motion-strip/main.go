// Command motion-strip switches an LED strip on motion after dark and
// publishes controller events to MQTT.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/sweeney/motion-strip/internal/adc"
	"github.com/sweeney/motion-strip/internal/board"
	"github.com/sweeney/motion-strip/internal/config"
	"github.com/sweeney/motion-strip/internal/diag"
	"github.com/sweeney/motion-strip/internal/gpio"
	"github.com/sweeney/motion-strip/internal/logic"
	"github.com/sweeney/motion-strip/internal/mqtt"
	"github.com/sweeney/motion-strip/internal/status"
	"github.com/sweeney/motion-strip/internal/web"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg *config.Config) error {
	b, err := openBoard(cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	if cfg.PrintState {
		printState(os.Stdout, b)
		return nil
	}

	sessionID := uuid.NewString()
	tracker := status.NewTracker(time.Now(), sessionID, statusConfig(cfg))
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	var sinks []logic.Sink
	if cfg.Diagnostics {
		sinks = append(sinks, diag.NewLogger(nil))
	}

	var (
		publisher  mqtt.Publisher
		mqttStatus mqtt.ConnectionStatus
		mqttSink   *mqtt.Sink
	)
	if cfg.MQTT.Broker != "" {
		pub := mqtt.NewRealPublisher(cfg.MQTT.Broker, "motion-strip-"+sessionID[:8])
		defer pub.Close()
		publisher, mqttStatus = pub, pub
		mqttSink = mqtt.NewSink(pub, mqtt.DefaultQueueSize, time.Now)
		sinks = append(sinks, mqttSink)
	}

	ctrl, err := logic.NewController(cfg.Logic(), board.NewSystemClock(), b, b, b, diag.Multi(sinks...))
	if err != nil {
		return err
	}

	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTPAddr)
	}

	log.Printf("started: session=%s pir=%d strip=%d adc=%s broker=%q lockout=%v calibration=%s",
		sessionID, cfg.GPIO.PinPIR, cfg.GPIO.PinStrip, cfg.ADC.Port, cfg.MQTT.Broker,
		cfg.Controller.Lockout, cfg.Controller.Calibration)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	return runLoop(loopDeps{
		ctrl:       ctrl,
		drivers:    b,
		publisher:  publisher,
		mqttStatus: mqttStatus,
		sink:       mqttSink,
		tracker:    tracker,
		heartbeat:  status.NewHeartbeat(cfg.MQTT.Heartbeat, time.Now()),
		now:        time.Now,
	}, sigCh)
}

// openBoard opens the PIR input, the strip output and the ADC bridge.
// Anything already opened is released if a later step fails.
func openBoard(cfg *config.Config) (*board.Board, error) {
	pir, err := gpio.NewRealInput(cfg.GPIO.Chip, cfg.GPIO.PinPIR)
	if err != nil {
		return nil, fmt.Errorf("init pir: %w", err)
	}
	strip, err := gpio.NewRealOutput(cfg.GPIO.Chip, cfg.GPIO.PinStrip)
	if err != nil {
		pir.Close()
		return nil, fmt.Errorf("init strip: %w", err)
	}
	ldr, err := adc.OpenSerial(cfg.ADC.Port, cfg.PortOptions())
	if err != nil {
		strip.Close()
		pir.Close()
		return nil, fmt.Errorf("init adc: %w", err)
	}
	return board.New(pir, strip, ldr, cfg.ADC.Max), nil
}

func printState(w io.Writer, b *board.Board) {
	fmt.Fprintf(w, "PIR: %s, light: %d, strip: %s\n",
		stateString(b.MotionDetected()), b.LightLevel(), stateString(b.StripOn()))
}

// driverErrors is satisfied by *board.Board.
type driverErrors interface {
	Errors() board.Errors
}

type loopDeps struct {
	ctrl       *logic.Controller
	drivers    driverErrors
	publisher  mqtt.Publisher        // nil when MQTT is disabled
	mqttStatus mqtt.ConnectionStatus // nil when MQTT is disabled
	sink       *mqtt.Sink            // nil when MQTT is disabled
	tracker    *status.Tracker
	heartbeat  *status.Heartbeat
	now        func() time.Time
}

// runLoop publishes STARTUP, runs the controller until a signal arrives,
// then flushes queued events and publishes SHUTDOWN.
func runLoop(d loopDeps, sig <-chan os.Signal) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopped := make(chan string, 1)
	go func() {
		s := <-sig
		log.Printf("received %v, shutting down", s)
		stopped <- signalName(s)
		cancel()
	}()

	d.publishSystem("STARTUP", "", true)

	// The sink outlives the controller so events from its last tick are
	// still published.
	sinkCtx, stopSink := context.WithCancel(context.Background())
	defer stopSink()
	var wg sync.WaitGroup
	if d.sink != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.sink.Run(sinkCtx)
		}()
	}

	err := d.ctrl.Run(ctx, d.afterTick)
	stopSink()
	wg.Wait()

	reason := ""
	select {
	case reason = <-stopped:
	default:
	}
	d.publishSystem("SHUTDOWN", reason, true)
	return err
}

// afterTick refreshes the status tracker and sends a heartbeat when one is due.
func (d loopDeps) afterTick(st logic.State) {
	d.refresh(st)
	if d.heartbeat == nil || !d.heartbeat.Due(d.now()) {
		return
	}
	if net := readNetworkInfo(); net != nil {
		d.tracker.SetNetwork(net)
	}
	snap := d.tracker.Snapshot()
	log.Printf("heartbeat: uptime=%v strip=%s dark=%v cycles=%d repairs=%d",
		snap.Uptime().Truncate(time.Second), stateString(st.StripOn), st.Dark,
		st.Counts.MotionCycles, st.Counts.WatchdogRepairs)
	d.publishSystem("HEARTBEAT", "", false)
}

func (d loopDeps) refresh(st logic.State) {
	if d.tracker == nil {
		return
	}
	var errs board.Errors
	if d.drivers != nil {
		errs = d.drivers.Errors()
	}
	d.tracker.Update(st, errs)
	if d.mqttStatus != nil {
		d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
	}
	if d.sink != nil {
		d.tracker.SetMQTTDropped(d.sink.Dropped())
	}
}

func (d loopDeps) publishSystem(event, reason string, retained bool) {
	if d.publisher == nil {
		return
	}
	ev := mqtt.SystemEvent{
		Timestamp: d.now(),
		Event:     event,
		Reason:    reason,
		Retained:  retained,
	}
	if d.tracker != nil {
		if d.mqttStatus != nil {
			d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
		}
		ev.RawPayload = status.FormatStatusEvent(d.tracker.Snapshot(), event, reason)
	}
	if err := d.publisher.PublishSystem(ev); err != nil {
		log.Printf("failed to publish %s event: %v", event, err)
		return
	}
	log.Printf("published %s event", event)
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

// statusConfig copies the displayable settings into the status tracker.
func statusConfig(cfg *config.Config) status.Config {
	return status.Config{
		Broker:         cfg.MQTT.Broker,
		HTTPPort:       cfg.HTTPAddr,
		ADCPort:        cfg.ADC.Port,
		HeartbeatMs:    cfg.MQTT.Heartbeat.Milliseconds(),
		LockoutMs:      cfg.Controller.Lockout.Milliseconds(),
		FastIntervalMs: cfg.Controller.FastInterval.Milliseconds(),
		SlowIntervalMs: cfg.Controller.SlowInterval.Milliseconds(),
		Threshold:      cfg.Controller.Threshold,
		Hysteresis:     cfg.Controller.Hysteresis,
		Calibration:    cfg.Controller.Calibration,
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func stateString(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
