package market

import (
	"sync"
	"time"

	"github.com/viken-labs/ressurstorg/internal/metrics"
)

// EventType identifies what changed.
type EventType string

const (
	EventMessageCreated    EventType = "message.created"
	EventDisclosureCreated EventType = "disclosure.created"
	EventResourceTaken     EventType = "resource.taken"
)

// Event is a change notification. It carries identifiers only; consumers
// re-fetch the affected rows rather than merging deltas.
type Event struct {
	Type       EventType `json:"type"`
	ThreadID   string    `json:"thread_id,omitempty"`
	ResourceID string    `json:"resource_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

const subscriberBuffer = 16

type subscriber struct {
	companyID string
	ch        chan Event
}

// Broker fans out change events to per-company subscribers. Publishing
// never blocks: a subscriber that cannot keep up loses events (counted),
// which is safe because consumers re-fetch on any event.
type Broker struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]*subscriber
}

// NewBroker creates an event broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[int]*subscriber)}
}

// Subscribe registers a listener for events addressed to companyID.
// The returned cancel function must be called when the consumer goes
// away; it closes the channel and releases the subscription.
func (b *Broker) Subscribe(companyID string) (<-chan Event, func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	sub := &subscriber{companyID: companyID, ch: make(chan Event, subscriberBuffer)}
	b.subs[id] = sub
	b.mu.Unlock()

	metrics.EventStreamsActive.Inc()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub.ch)
			metrics.EventStreamsActive.Dec()
		}
		b.mu.Unlock()
	}
	return sub.ch, cancel
}

// Publish delivers an event to every subscriber of the listed companies.
func (b *Broker) Publish(event Event, companyIDs ...string) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	targets := make(map[string]bool, len(companyIDs))
	for _, id := range companyIDs {
		targets[id] = true
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if !targets[sub.companyID] {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			metrics.EventsDroppedTotal.Inc()
		}
	}
}

// SubscriberCount returns the number of active subscriptions.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
