package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/motion-strip/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"onOff": onOffLabel,
	"yesNo": func(b bool) string {
		if b {
			return "yes"
		}
		return "no"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Motion Strip</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Motion Strip</h1>

<h2>State</h2>
<table>
<tr><th>Strip</th><td id="strip-state" class="{{if .State.StripOn}}on{{else}}off{{end}}">{{onOff .State.StripOn}}</td></tr>
<tr><th>Light</th><td id="light-state" class="{{if not .State.Calibrated}}unknown{{end}}">{{if not .State.Calibrated}}UNKNOWN{{else if .State.Dark}}DARK{{else}}LIGHT{{end}}</td></tr>
<tr><th>Light average</th><td>{{.State.Average}} (threshold {{.State.Threshold}})</td></tr>
<tr><th>Sample interval</th><td>{{.State.Interval}}</td></tr>
<tr><th>Motion</th><td>{{if .State.MotionActive}}active{{else}}idle{{end}}</td></tr>
<tr><th>Lockout</th><td>{{yesNo .State.LockedOut}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
<tr><th>Dropped events</th><td>{{.MQTTDropped}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Counters</h2>
<table>
<tr><th>Light samples</th><td>{{.State.Counts.LightSamples}}</td></tr>
<tr><th>Motion cycles</th><td>{{.State.Counts.MotionCycles}}</td></tr>
<tr><th>Extensions</th><td>{{.State.Counts.Extensions}}</td></tr>
<tr><th>Strip ON</th><td>{{.State.Counts.StripOn}}</td></tr>
<tr><th>Strip OFF</th><td>{{.State.Counts.StripOff}}</td></tr>
<tr><th>Watchdog repairs</th><td>{{.State.Counts.WatchdogRepairs}}</td></tr>
<tr><th>Clock resyncs</th><td>{{.State.Counts.ClockResyncs}}</td></tr>
<tr><th>Driver errors</th><td>pir {{.Errors.MotionReads}}, adc {{.Errors.LightReads}}, strip {{.Errors.StripWrites}}/{{.Errors.StripReads}}, clamped {{.Errors.Clamped}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Session</th><td>{{.SessionID}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Calibration</th><td>{{.Config.Calibration}}</td></tr>
<tr><th>Lockout</th><td>{{.Config.LockoutMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>ADC</th><td>{{.Config.ADCPort}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	return indexTmpl.Execute(w, data)
}
