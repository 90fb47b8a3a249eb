package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/cellar-pump/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": formatUptime,
	"stateClass": func(s string) string {
		switch s {
		case "ON":
			return "on"
		case "OFF":
			return "off"
		}
		return "unknown"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Cellar Pump</title>
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
.lcd { background: #223; color: #cfe; padding: 6px 10px; white-space: pre; display: inline-block; }
.lcd.RED { border-left: 6px solid #c33; }
.lcd.GREEN { border-left: 6px solid #3a3; }
.lcd.BLUE { border-left: 6px solid #36c; }
</style>
</head>
<body>
<h1>Cellar Pump</h1>

<h2>Pump</h2>
<table>
<tr><th>State</th><td class="{{stateClass .Pump}}">{{.Pump}}</td></tr>
<tr><th>Preset</th><td>{{.Controller.PresetIndex}}: {{.Controller.Preset.Label}}</td></tr>
<tr><th>Remaining</th><td>{{uptime .Controller.Remaining}}</td></tr>
<tr><th>Display</th><td><span class="lcd {{.Controller.Frame.Color}}">{{.Controller.Frame.Line1}}
{{.Controller.Frame.Line2}}</span></td></tr>
</table>

<h2>Sensor</h2>
<table>
{{if .Controller.Reading.Valid}}<tr><th>Temperature</th><td>{{printf "%.1f" .Controller.Reading.Temperature}} &deg;C</td></tr>
<tr><th>Humidity</th><td>{{printf "%.1f" .Controller.Reading.Humidity}} %</td></tr>
{{else}}<tr><th>Reading</th><td class="unknown">no reading yet</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Pump ON</th><td>{{.Controller.Counts.PumpOn}}</td></tr>
<tr><th>Pump OFF</th><td>{{.Controller.Counts.PumpOff}}</td></tr>
<tr><th>Preset changes</th><td>{{.Controller.Counts.PresetChanges}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>Storage</th><td>{{if .Config.Storage}}{{.Config.Storage}}{{else}}memory{{end}}</td></tr>
<tr><th>Mode</th><td>{{if .Config.Simulated}}simulated{{else}}hardware{{end}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	data := struct {
		status.Snapshot
		Uptime time.Duration
		Pump   string
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Pump:     snap.PumpState(),
	}
	indexTmpl.Execute(w, data)
}

func formatUptime(d time.Duration) string {
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
}
