package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/cellar-pump/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event            string       `json:"event,omitempty"`
	Reason           string       `json:"reason,omitempty"`
	Pump             string       `json:"pump"`
	RemainingSeconds int64        `json:"remaining_seconds"`
	Preset           PresetJSON   `json:"preset"`
	Reading          *ReadingJSON `json:"reading,omitempty"`
	Display          DisplayJSON  `json:"display"`
	UptimeSeconds    int64        `json:"uptime_seconds"`
	StartTime        string       `json:"start_time"`
	Timestamp        string       `json:"timestamp"`
	MQTT             MQTTStatus   `json:"mqtt"`
	Counts           CountsJSON   `json:"event_counts"`
	Network          *NetworkJSON `json:"network,omitempty"`
	Config           ConfigJSON   `json:"config"`
}

// PresetJSON describes the active preset.
type PresetJSON struct {
	Index           int    `json:"index"`
	Label           string `json:"label"`
	OnSeconds       int64  `json:"on_seconds"`
	IntervalSeconds int64  `json:"interval_seconds"`
}

// ReadingJSON is the cached sensor reading.
type ReadingJSON struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
}

// DisplayJSON mirrors what the LCD currently shows.
type DisplayJSON struct {
	Line1   string `json:"line1"`
	Line2   string `json:"line2"`
	Color   string `json:"color"`
	Overlay bool   `json:"overlay"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	PumpOn        int `json:"pump_on"`
	PumpOff       int `json:"pump_off"`
	PresetChanges int `json:"preset_changes"`
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
	PollMs      int64        `json:"poll_ms"`
	DebounceMs  int64        `json:"debounce_ms"`
	HeartbeatMs int64        `json:"heartbeat_ms"`
	Broker      string       `json:"broker"`
	HTTPAddr    string       `json:"http_addr"`
	Storage     string       `json:"storage"`
	Simulated   bool         `json:"simulated,omitempty"`
	Features    FeaturesJSON `json:"features"`
}

// FeaturesJSON lists the composed peripherals.
type FeaturesJSON struct {
	Sensor  bool `json:"sensor"`
	Display bool `json:"display"`
	Color   bool `json:"color"`
	Button  bool `json:"button"`
}

// PumpState returns the pump state, or UNKNOWN before the first update.
func (s Snapshot) PumpState() string {
	if !s.Started || s.Controller.Pump == "" {
		return "UNKNOWN"
	}
	return string(s.Controller.Pump)
}

func buildInner(snap Snapshot) StatusInner {
	c := snap.Controller
	inner := StatusInner{
		Pump:             snap.PumpState(),
		RemainingSeconds: int64(c.Remaining / time.Second),
		Preset: PresetJSON{
			Index:           c.PresetIndex,
			Label:           c.Preset.Label,
			OnSeconds:       int64(c.Preset.OnDuration / time.Second),
			IntervalSeconds: int64(c.Preset.CycleInterval / time.Second),
		},
		Display: DisplayJSON{
			Line1:   c.Frame.Line1,
			Line2:   c.Frame.Line2,
			Color:   colorOrOff(c.Frame.Color),
			Overlay: c.OverlayActive,
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			PumpOn:        c.Counts.PumpOn,
			PumpOff:       c.Counts.PumpOff,
			PresetChanges: c.Counts.PresetChanges,
		},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			DebounceMs:  snap.Config.DebounceMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			Storage:     snap.Config.Storage,
			Simulated:   snap.Config.Simulated,
			Features:    FeaturesJSON(snap.Config.Features),
		},
	}
	if c.Reading.Valid {
		inner.Reading = &ReadingJSON{Temperature: c.Reading.Temperature, Humidity: c.Reading.Humidity}
	}
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
	return inner
}

func colorOrOff(c logic.Color) string {
	if c == "" {
		return string(logic.ColorOff)
	}
	return string(c)
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
