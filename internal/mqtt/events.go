package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/larsks/dronevision/internal/dashboard"
	"github.com/larsks/dronevision/internal/telemetry"
)

// Topic layout:
//
//	event/session/<session>/<opened|closed>
//	event/action/<session>/<kind>
//	event/telemetry/<session>
const (
	topicSession   = "event/session/%s/%s"
	topicAction    = "event/action/%s/%s"
	topicTelemetry = "event/telemetry/%s"
)

// SessionEvent is published when a viewer session opens or closes
type SessionEvent struct {
	SessionID string `json:"session_id"`
	EventName string `json:"event_name"`
	Timestamp string `json:"timestamp"`
}

// ActionEvent is published when a viewer triggers a simulated action
type ActionEvent struct {
	SessionID string `json:"session_id"`
	Action    string `json:"action"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// TelemetryEvent mirrors an entry appended to a session's feed
type TelemetryEvent struct {
	SessionID string          `json:"session_id"`
	Entry     telemetry.Entry `json:"entry"`
	Timestamp string          `json:"timestamp"`
}

// jsonPublisher is the part of Client used by EventPublisher
type jsonPublisher interface {
	PublishJSON(topic string, v any) error
}

// DefaultQueueSize is how many events may wait for the broker before new
// ones are dropped.
const DefaultQueueSize = 256

type outgoing struct {
	topic   string
	payload any
}

// EventPublisher forwards session activity to an MQTT broker. Events are
// queued and published from a background goroutine, so a slow broker never
// stalls the caller. Events arriving while the queue is full are dropped.
// Publish failures are logged and otherwise ignored.
type EventPublisher struct {
	client jsonPublisher
	now    func() time.Time

	mutex  sync.Mutex
	closed bool
	queue  chan outgoing
	doneCh chan struct{}
}

// NewEventPublisher creates an EventPublisher on top of client
func NewEventPublisher(client *Client) *EventPublisher {
	return newEventPublisher(client, DefaultQueueSize)
}

func newEventPublisher(client jsonPublisher, queueSize int) *EventPublisher {
	p := &EventPublisher{
		client: client,
		now:    time.Now,
		queue:  make(chan outgoing, queueSize),
		doneCh: make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *EventPublisher) run() {
	defer close(p.doneCh)
	for msg := range p.queue {
		if err := p.client.PublishJSON(msg.topic, msg.payload); err != nil {
			log.Printf("failed to publish to %s: %v", msg.topic, err)
		}
	}
}

// Close stops accepting events and waits for the queued ones to be
// published. It may be called more than once.
func (p *EventPublisher) Close() {
	p.mutex.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mutex.Unlock()

	<-p.doneCh
}

func (p *EventPublisher) timestamp() string {
	return p.now().Format(time.RFC3339)
}

func (p *EventPublisher) publish(topic string, v any) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.closed {
		return
	}

	select {
	case p.queue <- outgoing{topic: topic, payload: v}:
	default:
		log.Printf("event queue full, dropping event for %s", topic)
	}
}

// SessionOpened publishes an "opened" session event
func (p *EventPublisher) SessionOpened(sessionID string) {
	p.publish(fmt.Sprintf(topicSession, sessionID, "opened"), SessionEvent{
		SessionID: sessionID,
		EventName: "opened",
		Timestamp: p.timestamp(),
	})
}

// SessionClosed publishes a "closed" session event
func (p *EventPublisher) SessionClosed(sessionID string) {
	p.publish(fmt.Sprintf(topicSession, sessionID, "closed"), SessionEvent{
		SessionID: sessionID,
		EventName: "closed",
		Timestamp: p.timestamp(),
	})
}

// ActionTriggered publishes an action event
func (p *EventPublisher) ActionTriggered(sessionID string, kind dashboard.ActionKind) {
	p.publish(fmt.Sprintf(topicAction, sessionID, kind), ActionEvent{
		SessionID: sessionID,
		Action:    string(kind),
		Message:   kind.Message(),
		Timestamp: p.timestamp(),
	})
}

// TelemetryAppended publishes a telemetry entry
func (p *EventPublisher) TelemetryAppended(sessionID string, entry telemetry.Entry) {
	p.publish(fmt.Sprintf(topicTelemetry, sessionID), TelemetryEvent{
		SessionID: sessionID,
		Entry:     entry,
		Timestamp: p.timestamp(),
	})
}
