// Package config loads daemon configuration. Values are layered:
// defaults, then the YAML file, then MOTION_STRIP_* environment variables,
// then command-line flags that were explicitly set.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/sweeney/motion-strip/internal/adc"
	"github.com/sweeney/motion-strip/internal/gpio"
	"github.com/sweeney/motion-strip/internal/logic"
)

// Config is the full daemon configuration.
type Config struct {
	GPIO        GPIO       `yaml:"gpio"`
	ADC         ADC        `yaml:"adc"`
	MQTT        MQTT       `yaml:"mqtt"`
	HTTPAddr    string     `yaml:"http_addr"`
	Diagnostics bool       `yaml:"diagnostics"`
	Controller  Controller `yaml:"controller"`

	// PrintState reads the sensors once, prints them and exits. Flag only.
	PrintState bool `yaml:"-"`
}

// GPIO selects the chip and BCM line offsets.
type GPIO struct {
	Chip     string `yaml:"chip"`
	PinPIR   int    `yaml:"pin_pir"`
	PinStrip int    `yaml:"pin_strip"`
}

// ADC describes the serial ADC bridge.
type ADC struct {
	Port        string        `yaml:"port"`
	BaudRate    int           `yaml:"baud_rate"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
	Max         int           `yaml:"max"`
}

// MQTT configures event publishing. An empty broker disables it.
type MQTT struct {
	Broker    string        `yaml:"broker"`
	Heartbeat time.Duration `yaml:"heartbeat"`
}

// Controller mirrors logic.Config with explicit units on every duration.
type Controller struct {
	DebounceWindow     time.Duration `yaml:"debounce_window"`
	DebounceReads      int           `yaml:"debounce_reads"`
	MotionCheckpoint   time.Duration `yaml:"motion_checkpoint"`
	MotionTimeout      time.Duration `yaml:"motion_timeout"`
	BufferSize         int           `yaml:"buffer_size"`
	Threshold          int           `yaml:"threshold"`
	Hysteresis         int           `yaml:"hysteresis"`
	Calibration        string        `yaml:"calibration"`
	CalibrationSamples int           `yaml:"calibration_samples"`
	CalibrationSpacing time.Duration `yaml:"calibration_spacing"`
	CalibrationOffset  int           `yaml:"calibration_offset"`
	FastInterval       time.Duration `yaml:"fast_interval"`
	SlowInterval       time.Duration `yaml:"slow_interval"`
	SlowAfter          int           `yaml:"slow_after"`
	Lockout            time.Duration `yaml:"lockout"`
	WatchdogInterval   time.Duration `yaml:"watchdog_interval"`
	IdleDelay          time.Duration `yaml:"idle_delay"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	lc := logic.DefaultConfig()
	port := adc.DefaultPortOptions()
	return &Config{
		GPIO: GPIO{
			Chip:     gpio.DefaultChip,
			PinPIR:   gpio.DefaultPinPIR,
			PinStrip: gpio.DefaultPinStrip,
		},
		ADC: ADC{
			Port:        "/dev/ttyACM0",
			BaudRate:    port.BaudRate,
			ReadTimeout: port.ReadTimeout,
			Max:         adc.DefaultMax,
		},
		MQTT: MQTT{
			Broker:    "tcp://192.168.1.200:1883",
			Heartbeat: 15 * time.Minute,
		},
		HTTPAddr:    ":80",
		Diagnostics: true,
		Controller: Controller{
			DebounceWindow:     lc.DebounceWindow,
			DebounceReads:      lc.DebounceReads,
			MotionCheckpoint:   lc.MotionCheckpoint,
			MotionTimeout:      lc.MotionTimeout,
			BufferSize:         lc.BufferSize,
			Threshold:          lc.Threshold,
			Hysteresis:         lc.Hysteresis,
			Calibration:        string(lc.Calibration),
			CalibrationSamples: lc.CalibrationSamples,
			CalibrationSpacing: lc.CalibrationSpacing,
			CalibrationOffset:  lc.CalibrationOffset,
			FastInterval:       lc.FastInterval,
			SlowInterval:       lc.SlowInterval,
			SlowAfter:          lc.SlowAfter,
			Lockout:            lc.Lockout,
			WatchdogInterval:   lc.WatchdogInterval,
			IdleDelay:          lc.IdleDelay,
		},
	}
}

// Logic converts the controller block.
func (c *Config) Logic() logic.Config {
	cc := c.Controller
	return logic.Config{
		DebounceWindow:     cc.DebounceWindow,
		DebounceReads:      cc.DebounceReads,
		MotionCheckpoint:   cc.MotionCheckpoint,
		MotionTimeout:      cc.MotionTimeout,
		BufferSize:         cc.BufferSize,
		Threshold:          cc.Threshold,
		Hysteresis:         cc.Hysteresis,
		Calibration:        logic.CalibrationMode(cc.Calibration),
		CalibrationSamples: cc.CalibrationSamples,
		CalibrationSpacing: cc.CalibrationSpacing,
		CalibrationOffset:  cc.CalibrationOffset,
		FastInterval:       cc.FastInterval,
		SlowInterval:       cc.SlowInterval,
		SlowAfter:          cc.SlowAfter,
		Lockout:            cc.Lockout,
		WatchdogInterval:   cc.WatchdogInterval,
		IdleDelay:          cc.IdleDelay,
	}
}

// PortOptions returns the serial options for the ADC bridge.
func (c *Config) PortOptions() adc.PortOptions {
	return adc.PortOptions{BaudRate: c.ADC.BaudRate, ReadTimeout: c.ADC.ReadTimeout}
}

// LoadFile overlays the YAML file at path onto c. Keys missing from the
// file keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Environment variable names.
const (
	EnvBroker      = "MOTION_STRIP_BROKER"
	EnvHTTPAddr    = "MOTION_STRIP_HTTP"
	EnvADCPort     = "MOTION_STRIP_ADC_PORT"
	EnvDiagnostics = "MOTION_STRIP_DIAGNOSTICS"
	EnvLockout     = "MOTION_STRIP_LOCKOUT"
)

// LoadFromEnv overrides values from MOTION_STRIP_* variables. Unparseable
// values are reported rather than ignored.
func (c *Config) LoadFromEnv() error {
	if v, ok := os.LookupEnv(EnvBroker); ok {
		c.MQTT.Broker = v
	}
	if v, ok := os.LookupEnv(EnvHTTPAddr); ok {
		c.HTTPAddr = v
	}
	if v := os.Getenv(EnvADCPort); v != "" {
		c.ADC.Port = v
	}
	if v := os.Getenv(EnvDiagnostics); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDiagnostics, err)
		}
		c.Diagnostics = b
	}
	if v := os.Getenv(EnvLockout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLockout, err)
		}
		c.Controller.Lockout = d
	}
	return nil
}

// Validate checks the daemon-level values and the controller block.
func (c *Config) Validate() error {
	if c.GPIO.Chip == "" {
		return errors.New("gpio chip is required")
	}
	if c.GPIO.PinPIR < 0 || c.GPIO.PinStrip < 0 {
		return fmt.Errorf("gpio pins must not be negative (pir=%d strip=%d)", c.GPIO.PinPIR, c.GPIO.PinStrip)
	}
	if c.GPIO.PinPIR == c.GPIO.PinStrip {
		return fmt.Errorf("pir and strip must use different pins, both are %d", c.GPIO.PinPIR)
	}
	if c.ADC.Port == "" {
		return errors.New("adc port is required")
	}
	if c.ADC.BaudRate <= 0 {
		return fmt.Errorf("adc baud rate must be positive, got %d", c.ADC.BaudRate)
	}
	if c.ADC.Max <= 0 {
		return fmt.Errorf("adc max must be positive, got %d", c.ADC.Max)
	}
	if c.MQTT.Heartbeat < 0 {
		return fmt.Errorf("heartbeat must not be negative, got %v", c.MQTT.Heartbeat)
	}
	if err := c.Logic().Validate(); err != nil {
		return fmt.Errorf("controller: %w", err)
	}
	return nil
}

// Load builds the configuration from args (without the program name).
func Load(args []string) (*Config, error) {
	cfg := Default()
	flagCfg := Default()

	fs := pflag.NewFlagSet("motion-strip", pflag.ContinueOnError)
	path := fs.StringP("config", "c", "", "YAML configuration file")
	bindFlags(fs, flagCfg)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *path != "" {
		if err := cfg.LoadFile(*path); err != nil {
			return nil, err
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}

	fs.Visit(func(f *pflag.Flag) {
		if apply, ok := flagAppliers[f.Name]; ok {
			apply(cfg, flagCfg)
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func bindFlags(fs *pflag.FlagSet, c *Config) {
	fs.StringVar(&c.GPIO.Chip, "gpio-chip", c.GPIO.Chip, "GPIO character device")
	fs.IntVar(&c.GPIO.PinPIR, "pin-pir", c.GPIO.PinPIR, "BCM pin number for the PIR sensor")
	fs.IntVar(&c.GPIO.PinStrip, "pin-strip", c.GPIO.PinStrip, "BCM pin number for the LED strip driver")
	fs.StringVar(&c.ADC.Port, "adc-port", c.ADC.Port, "Serial port of the ADC bridge")
	fs.IntVar(&c.ADC.BaudRate, "adc-baud", c.ADC.BaudRate, "ADC bridge baud rate")
	fs.StringVar(&c.MQTT.Broker, "broker", c.MQTT.Broker, "MQTT broker address (empty to disable)")
	fs.DurationVar(&c.MQTT.Heartbeat, "heartbeat", c.MQTT.Heartbeat, "Heartbeat interval (0 to disable)")
	fs.StringVar(&c.HTTPAddr, "http", c.HTTPAddr, "HTTP status address (empty to disable)")
	fs.BoolVar(&c.Diagnostics, "diagnostics", c.Diagnostics, "Log every controller event")
	fs.IntVar(&c.Controller.Threshold, "threshold", c.Controller.Threshold, "Light threshold (ADC units)")
	fs.StringVar(&c.Controller.Calibration, "calibration", c.Controller.Calibration, "Threshold calibration: fixed or sampled")
	fs.DurationVar(&c.Controller.Lockout, "lockout", c.Controller.Lockout, "Light sampling lockout after switching on")
	fs.BoolVar(&c.PrintState, "print-state", false, "Print current sensor state and exit")
}

var flagAppliers = map[string]func(dst, src *Config){
	"gpio-chip":   func(d, s *Config) { d.GPIO.Chip = s.GPIO.Chip },
	"pin-pir":     func(d, s *Config) { d.GPIO.PinPIR = s.GPIO.PinPIR },
	"pin-strip":   func(d, s *Config) { d.GPIO.PinStrip = s.GPIO.PinStrip },
	"adc-port":    func(d, s *Config) { d.ADC.Port = s.ADC.Port },
	"adc-baud":    func(d, s *Config) { d.ADC.BaudRate = s.ADC.BaudRate },
	"broker":      func(d, s *Config) { d.MQTT.Broker = s.MQTT.Broker },
	"heartbeat":   func(d, s *Config) { d.MQTT.Heartbeat = s.MQTT.Heartbeat },
	"http":        func(d, s *Config) { d.HTTPAddr = s.HTTPAddr },
	"diagnostics": func(d, s *Config) { d.Diagnostics = s.Diagnostics },
	"threshold":   func(d, s *Config) { d.Controller.Threshold = s.Controller.Threshold },
	"calibration": func(d, s *Config) { d.Controller.Calibration = s.Controller.Calibration },
	"lockout":     func(d, s *Config) { d.Controller.Lockout = s.Controller.Lockout },
	"print-state": func(d, s *Config) { d.PrintState = s.PrintState },
}
