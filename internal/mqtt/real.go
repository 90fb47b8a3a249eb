package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/sweeney/cellar-pump/internal/logging"
	"github.com/sweeney/cellar-pump/internal/logic"
)

// DefaultBufferSize is the number of messages kept while disconnected.
const DefaultBufferSize = 100

const (
	publishTimeout = 5 * time.Second
	closeTimeout   = 2 * time.Second
)

// client is the subset of paho.Client the publisher uses.
type client interface {
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

// RealPublisher publishes to a broker from its own goroutine. Publish only
// queues; messages wait in a ring buffer until the connection is up.
type RealPublisher struct {
	client   client
	capacity int

	mu  sync.Mutex
	buf *ringBuffer

	wake      chan struct{}
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	connectedOnce bool
}

// NewRealPublisher creates a publisher for broker. Connection happens in the
// background with automatic retry, so this never waits on the network.
func NewRealPublisher(broker, clientID string) *RealPublisher {
	p := newPublisher(nil, DefaultBufferSize)

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(TopicSystem, string(WillPayload()), 1, true).
		SetOnConnectHandler(func(paho.Client) { p.onConnect() }).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			logging.Warn("mqtt connection lost", zap.Error(err))
		})

	c := paho.NewClient(opts)
	p.client = c
	c.Connect()
	go p.run()
	return p
}

func newPublisher(c client, capacity int) *RealPublisher {
	return &RealPublisher{
		client:   c,
		capacity: capacity,
		buf:      newRingBuffer(capacity),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Publish queues a pump event.
func (p *RealPublisher) Publish(ts time.Time, event logic.Event) error {
	payload, err := FormatPayload(ts, event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	p.enqueue(bufferedMsg{topic: Topic, payload: payload})
	return nil
}

// PublishSystem queues a system event at QoS 1.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	p.enqueue(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
	return nil
}

// IsConnected reports the broker connection state.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close makes a last attempt to send queued messages, then disconnects.
func (p *RealPublisher) Close() error {
	p.closeOnce.Do(func() {
		close(p.done)
		select {
		case <-p.stopped:
		case <-time.After(closeTimeout):
			logging.Warn("mqtt close timed out with messages pending")
		}
		p.client.Disconnect(250)
	})
	return nil
}

func (p *RealPublisher) onConnect() {
	p.mu.Lock()
	reconnect := p.connectedOnce
	p.connectedOnce = true
	p.mu.Unlock()

	if reconnect {
		logging.Info("mqtt reconnected")
		p.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "RECONNECTED"})
		return
	}
	logging.Info("mqtt connected")
	p.notify()
}

func (p *RealPublisher) enqueue(msg bufferedMsg) {
	p.mu.Lock()
	p.buf.push(msg)
	p.mu.Unlock()
	p.notify()
}

func (p *RealPublisher) notify() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *RealPublisher) run() {
	defer close(p.stopped)
	var pending []bufferedMsg
	for {
		select {
		case <-p.wake:
			pending = p.flush(pending)
		case <-p.done:
			p.flush(pending)
			return
		}
	}
}

// flush sends queued messages in order until the queue is empty or a send
// fails. Unsent messages are returned for the next attempt.
func (p *RealPublisher) flush(pending []bufferedMsg) []bufferedMsg {
	p.mu.Lock()
	pending = append(pending, p.buf.drainAll()...)
	p.mu.Unlock()

	if over := len(pending) - p.capacity; over > 0 {
		logging.Warn("mqtt backlog full, dropping oldest", zap.Int("dropped", over))
		pending = pending[over:]
	}

	for len(pending) > 0 {
		if !p.client.IsConnected() {
			return pending
		}
		msg := pending[0]
		token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
		if !token.WaitTimeout(publishTimeout) {
			logging.Warn("mqtt publish timeout", zap.String("topic", msg.topic))
			return pending
		}
		if err := token.Error(); err != nil {
			logging.Warn("mqtt publish failed", zap.String("topic", msg.topic), zap.Error(err))
			return pending
		}
		pending = pending[1:]
	}
	return nil
}
