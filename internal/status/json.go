package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	SessionID     string       `json:"session_id"`
	Strip         string       `json:"strip"`
	Light         string       `json:"light"`
	Ready         bool         `json:"ready"`
	MotionActive  bool         `json:"motion_active"`
	LockedOut     bool         `json:"locked_out"`
	LightAverage  int          `json:"light_average"`
	Threshold     int          `json:"threshold"`
	IntervalMs    int64        `json:"light_interval_ms"`
	Millis        uint32       `json:"millis"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"event_counts"`
	Errors        ErrorsJSON   `json:"driver_errors"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
	Dropped   int    `json:"dropped"`
}

// CountsJSON is the JSON representation of controller counters.
type CountsJSON struct {
	LightSamples    int `json:"light_samples"`
	MotionCycles    int `json:"motion_cycles"`
	Extensions      int `json:"extensions"`
	StripOn         int `json:"strip_on"`
	StripOff        int `json:"strip_off"`
	WatchdogRepairs int `json:"watchdog_repairs"`
	ClockResyncs    int `json:"clock_resyncs"`
}

// ErrorsJSON is the JSON representation of driver error counts.
type ErrorsJSON struct {
	MotionReads int `json:"motion_reads"`
	LightReads  int `json:"light_reads"`
	StripWrites int `json:"strip_writes"`
	StripReads  int `json:"strip_reads"`
	Clamped     int `json:"clamped"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Broker         string `json:"broker"`
	HTTPPort       string `json:"http_port"`
	ADCPort        string `json:"adc_port"`
	HeartbeatMs    int64  `json:"heartbeat_ms"`
	LockoutMs      int64  `json:"lockout_ms"`
	FastIntervalMs int64  `json:"fast_interval_ms"`
	SlowIntervalMs int64  `json:"slow_interval_ms"`
	Threshold      int    `json:"threshold"`
	Hysteresis     int    `json:"hysteresis"`
	Calibration    string `json:"calibration"`
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

func buildInner(snap Snapshot) StatusInner {
	st := snap.State
	light := "UNKNOWN"
	if st.Calibrated {
		light = "LIGHT"
		if st.Dark {
			light = "DARK"
		}
	}

	return StatusInner{
		SessionID:     snap.SessionID,
		Strip:         onOff(st.StripOn),
		Light:         light,
		Ready:         st.Calibrated,
		MotionActive:  st.MotionActive,
		LockedOut:     st.LockedOut,
		LightAverage:  st.Average,
		Threshold:     st.Threshold,
		IntervalMs:    st.Interval.Milliseconds(),
		Millis:        st.Millis,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT: MQTTStatus{
			Connected: snap.MQTTConnected,
			Broker:    snap.Config.Broker,
			Dropped:   snap.MQTTDropped,
		},
		Counts: CountsJSON{
			LightSamples:    st.Counts.LightSamples,
			MotionCycles:    st.Counts.MotionCycles,
			Extensions:      st.Counts.Extensions,
			StripOn:         st.Counts.StripOn,
			StripOff:        st.Counts.StripOff,
			WatchdogRepairs: st.Counts.WatchdogRepairs,
			ClockResyncs:    st.Counts.ClockResyncs,
		},
		Errors: ErrorsJSON{
			MotionReads: snap.Errors.MotionReads,
			LightReads:  snap.Errors.LightReads,
			StripWrites: snap.Errors.StripWrites,
			StripReads:  snap.Errors.StripReads,
			Clamped:     snap.Errors.Clamped,
		},
		Config: ConfigJSON{
			Broker:         snap.Config.Broker,
			HTTPPort:       snap.Config.HTTPPort,
			ADCPort:        snap.Config.ADCPort,
			HeartbeatMs:    snap.Config.HeartbeatMs,
			LockoutMs:      snap.Config.LockoutMs,
			FastIntervalMs: snap.Config.FastIntervalMs,
			SlowIntervalMs: snap.Config.SlowIntervalMs,
			Threshold:      snap.Config.Threshold,
			Hysteresis:     snap.Config.Hysteresis,
			Calibration:    snap.Config.Calibration,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
