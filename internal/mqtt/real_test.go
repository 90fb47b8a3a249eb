package mqtt

import (
	"errors"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/cellar-pump/internal/logic"
)

type doneToken struct {
	err error
}

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error                   { return t.err }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type sent struct {
	topic    string
	qos      byte
	retained bool
	payload  string
}

type fakeClient struct {
	mu           sync.Mutex
	connected    bool
	failNext     bool
	sent         []sent
	disconnected bool
}

func (c *fakeClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *fakeClient) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failNext {
		c.failNext = false
		return doneToken{err: errors.New("write failed")}
	}
	c.sent = append(c.sent, sent{topic: topic, qos: qos, retained: retained, payload: string(payload.([]byte))})
	return doneToken{}
}

func (c *fakeClient) Disconnect(uint) {
	c.mu.Lock()
	c.disconnected = true
	c.mu.Unlock()
}

func (c *fakeClient) sentCopy() []sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sent(nil), c.sent...)
}

func startPublisher(t *testing.T, c *fakeClient, capacity int) *RealPublisher {
	t.Helper()
	p := newPublisher(c, capacity)
	go p.run()
	t.Cleanup(func() { p.Close() })
	return p
}

func pumpEvent(typ logic.EventType) logic.Event {
	return logic.Event{Type: typ, Preset: testPreset}
}

func TestRealPublisherSendsWhenConnected(t *testing.T) {
	c := &fakeClient{connected: true}
	p := startPublisher(t, c, 10)

	require.NoError(t, p.Publish(time.Now(), pumpEvent(logic.EventPumpOn)))
	require.NoError(t, p.PublishSystem(SystemEvent{Event: "STARTUP", Retained: true}))

	require.Eventually(t, func() bool { return len(c.sentCopy()) == 2 }, time.Second, 5*time.Millisecond)
	got := c.sentCopy()
	assert.Equal(t, Topic, got[0].topic)
	assert.Equal(t, byte(0), got[0].qos)
	assert.Equal(t, TopicSystem, got[1].topic)
	assert.Equal(t, byte(1), got[1].qos)
	assert.True(t, got[1].retained)
}

func TestRealPublisherBuffersWhileDisconnected(t *testing.T) {
	c := &fakeClient{}
	p := startPublisher(t, c, 10)

	p.Publish(time.Now(), pumpEvent(logic.EventPumpOn))
	p.Publish(time.Now(), pumpEvent(logic.EventPumpOff))
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, c.sentCopy())

	c.setConnected(true)
	p.onConnect()

	require.Eventually(t, func() bool { return len(c.sentCopy()) == 2 }, time.Second, 5*time.Millisecond)
	got := c.sentCopy()
	assert.Contains(t, got[0].payload, "PUMP_ON")
	assert.Contains(t, got[1].payload, "PUMP_OFF")
}

func TestRealPublisherReconnectAnnounces(t *testing.T) {
	c := &fakeClient{connected: true}
	p := startPublisher(t, c, 10)

	p.onConnect()
	p.onConnect()

	require.Eventually(t, func() bool { return len(c.sentCopy()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Contains(t, c.sentCopy()[0].payload, `"event":"RECONNECTED"`)
}

func TestRealPublisherRetriesAfterFailure(t *testing.T) {
	c := &fakeClient{connected: true, failNext: true}
	p := startPublisher(t, c, 10)

	p.Publish(time.Now(), pumpEvent(logic.EventPumpOn))
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, c.sentCopy())

	p.Publish(time.Now(), pumpEvent(logic.EventPumpOff))
	require.Eventually(t, func() bool { return len(c.sentCopy()) == 2 }, time.Second, 5*time.Millisecond)
	got := c.sentCopy()
	assert.Contains(t, got[0].payload, "PUMP_ON")
	assert.Contains(t, got[1].payload, "PUMP_OFF")
}

func TestRealPublisherDropsOldestWhenFull(t *testing.T) {
	c := &fakeClient{}
	p := startPublisher(t, c, 3)

	for i := 0; i < 5; i++ {
		p.Publish(time.Now(), logic.Event{Type: logic.EventPresetChanged, Index: i, Preset: testPreset})
	}
	time.Sleep(20 * time.Millisecond)
	c.setConnected(true)
	p.onConnect()

	require.Eventually(t, func() bool { return len(c.sentCopy()) == 3 }, time.Second, 5*time.Millisecond)
	assert.Contains(t, c.sentCopy()[0].payload, `"index":2`)
}

func TestRealPublisherCloseFlushesAndDisconnects(t *testing.T) {
	c := &fakeClient{connected: true}
	p := newPublisher(c, 10)
	go p.run()

	p.PublishSystem(SystemEvent{Event: "SHUTDOWN", Reason: "SIGTERM"})
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	assert.Len(t, c.sentCopy(), 1)
	assert.True(t, c.disconnected)
}
