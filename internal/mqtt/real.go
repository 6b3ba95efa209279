package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	publishTimeout = 5 * time.Second
	bufferCapacity = 1000
)

// brokerClient is the part of paho.Client the publisher uses.
type brokerClient interface {
	IsConnectionOpen() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

// RealPublisher publishes to an actual MQTT broker. Messages published
// while the broker is unreachable are held in a ring buffer and replayed,
// oldest first, once the connection comes back.
type RealPublisher struct {
	client brokerClient

	// mu guards buf and connectedOnce. send holds it across the
	// connection check so a message cannot be buffered after a replay
	// has already emptied the buffer.
	mu            sync.Mutex
	buf           *ringBuffer
	connectedOnce bool
}

// NewRealPublisher creates a publisher for the given broker. The connection
// is established in the background so a missing broker never delays startup.
func NewRealPublisher(broker, clientID string) *RealPublisher {
	p := &RealPublisher{buf: newRingBuffer(bufferCapacity)}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(TopicSystem, string(WillPayload()), 1, true).
		SetOnConnectHandler(func(paho.Client) { p.onConnect() }).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	client := paho.NewClient(opts)
	p.client = client
	client.Connect()
	return p
}

func newPublisherWithClient(c brokerClient) *RealPublisher {
	return &RealPublisher{client: c, buf: newRingBuffer(bufferCapacity)}
}

// onConnect runs on its own goroutine for every (re)connection.
func (p *RealPublisher) onConnect() {
	p.mu.Lock()
	reconnect := p.connectedOnce
	p.connectedOnce = true
	p.mu.Unlock()

	replayed, dropped := p.replay()
	log.Printf("mqtt: connected, replayed %d buffered messages (%d dropped)", replayed, dropped)

	if reconnect {
		payload, err := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "RECONNECTED"})
		if err == nil {
			p.client.Publish(TopicSystem, 1, false, payload)
		}
	}
}

// replay publishes buffered messages until the buffer stays empty.
func (p *RealPublisher) replay() (replayed, dropped int) {
	for {
		p.mu.Lock()
		pending, lost := p.buf.drainAll()
		p.mu.Unlock()

		dropped += lost
		if len(pending) == 0 {
			return replayed, dropped
		}
		for _, msg := range pending {
			token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
			if !token.WaitTimeout(publishTimeout) || token.Error() != nil {
				log.Printf("mqtt: replay to %s failed: %v", msg.topic, token.Error())
			}
		}
		replayed += len(pending)
	}
}

func (p *RealPublisher) send(msg bufferedMsg) error {
	p.mu.Lock()
	if !p.client.IsConnectionOpen() {
		p.buf.push(msg)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s: timeout", msg.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", msg.topic, err)
	}
	return nil
}

// Publish sends a controller event to the MQTT broker.
func (p *RealPublisher) Publish(event Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	// QoS 0 (at-most-once), not retained
	return p.send(bufferedMsg{topic: Topic, payload: payload})
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.send(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

// IsConnected reports whether the broker connection is currently open.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Buffered returns how many messages are waiting for a connection.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.len()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
