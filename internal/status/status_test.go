package status

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/cellar-pump/internal/logic"
)

func controllerSnapshot() logic.Snapshot {
	return logic.Snapshot{
		Pump:        logic.PumpOff,
		Remaining:   90 * time.Second,
		PresetIndex: 1,
		Preset:      logic.DefaultPresets[1],
		Reading:     logic.Reading{Temperature: 11.2, Humidity: 78.5, Valid: true},
		Frame:       logic.Frame{Line1: "T:11.2C H:78.5%", Line2: "Pump off 90s", Color: logic.ColorGreen},
		Counts:      logic.EventCounts{PumpOn: 4, PumpOff: 3, PresetChanges: 1},
	}
}

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := NewTracker(start, Config{PollMs: 10, HTTPAddr: ":8080"})

	snap := tr.Snapshot()
	assert.True(t, snap.StartTime.Equal(start))
	assert.Equal(t, int64(10), snap.Config.PollMs)
	assert.False(t, snap.Started)
	assert.False(t, snap.MQTTConnected)
	assert.Equal(t, "UNKNOWN", snap.PumpState())
}

func TestUpdateAndSnapshot(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.Update(controllerSnapshot())

	snap := tr.Snapshot()
	assert.True(t, snap.Started)
	assert.Equal(t, "OFF", snap.PumpState())
	assert.Equal(t, 3, snap.Controller.Counts.PumpOff)
}

func TestSetMQTTConnectedAndNetwork(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.SetMQTTConnected(true)
	tr.SetNetwork(&NetworkInfo{Type: "wifi", IP: "192.168.1.42", Status: "connected"})

	snap := tr.Snapshot()
	assert.True(t, snap.MQTTConnected)
	require.NotNil(t, snap.Network)
	assert.Equal(t, "192.168.1.42", snap.Network.IP)
}

func TestSnapshotUptime(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{StartTime: start, Now: start.Add(90 * time.Minute)}
	assert.Equal(t, 90*time.Minute, snap.Uptime())
}

func TestFormatJSON(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Controller:    controllerSnapshot(),
		Started:       true,
		StartTime:     start,
		Now:           start.Add(2 * time.Hour),
		MQTTConnected: true,
		Config: Config{
			PollMs:   10,
			Broker:   "tcp://10.0.0.2:1883",
			Features: Features{Sensor: true, Display: true},
		},
	}

	var sj StatusJSON
	require.NoError(t, json.Unmarshal(FormatJSON(snap), &sj))

	s := sj.Status
	assert.Empty(t, s.Event)
	assert.Equal(t, "OFF", s.Pump)
	assert.Equal(t, int64(90), s.RemainingSeconds)
	assert.Equal(t, PresetJSON{Index: 1, Label: "30s / 10min", OnSeconds: 30, IntervalSeconds: 600}, s.Preset)
	require.NotNil(t, s.Reading)
	assert.InDelta(t, 11.2, s.Reading.Temperature, 1e-9)
	assert.Equal(t, "GREEN", s.Display.Color)
	assert.Equal(t, "Pump off 90s", s.Display.Line2)
	assert.Equal(t, int64(7200), s.UptimeSeconds)
	assert.Equal(t, "2026-01-01T00:00:00Z", s.StartTime)
	assert.True(t, s.MQTT.Connected)
	assert.Equal(t, "tcp://10.0.0.2:1883", s.MQTT.Broker)
	assert.Equal(t, CountsJSON{PumpOn: 4, PumpOff: 3, PresetChanges: 1}, s.Counts)
	assert.Equal(t, FeaturesJSON{Sensor: true, Display: true}, s.Config.Features)
	assert.Nil(t, s.Network)
}

func TestFormatJSONBeforeFirstUpdate(t *testing.T) {
	snap := Snapshot{StartTime: time.Now(), Now: time.Now()}

	var sj StatusJSON
	require.NoError(t, json.Unmarshal(FormatJSON(snap), &sj))
	assert.Equal(t, "UNKNOWN", sj.Status.Pump)
	assert.Equal(t, "OFF", sj.Status.Display.Color)
	assert.Nil(t, sj.Status.Reading)
}

func TestFormatStatusEvent(t *testing.T) {
	snap := Snapshot{Controller: controllerSnapshot(), Started: true, StartTime: time.Now(), Now: time.Now()}

	var sj StatusJSON
	require.NoError(t, json.Unmarshal(FormatStatusEvent(snap, "SHUTDOWN", "SIGTERM"), &sj))
	assert.Equal(t, "SHUTDOWN", sj.Status.Event)
	assert.Equal(t, "SIGTERM", sj.Status.Reason)

	var raw map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(FormatStatusEvent(snap, "STARTUP", ""), &raw))
	_, exists := raw["status"]["reason"]
	assert.False(t, exists, "reason omitted when empty")
}

func TestFormatJSONWithNetwork(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Now(),
		Now:       time.Now(),
		Network:   &NetworkInfo{Type: "ethernet", IP: "10.0.0.5", Status: "connected"},
	}

	var sj StatusJSON
	require.NoError(t, json.Unmarshal(FormatJSON(snap), &sj))
	require.NotNil(t, sj.Status.Network)
	assert.Equal(t, "ethernet", sj.Status.Network.Type)
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.Update(controllerSnapshot())
				tr.SetMQTTConnected(j%2 == 0)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = FormatJSON(tr.Snapshot())
			}
		}()
	}
	wg.Wait()
}
