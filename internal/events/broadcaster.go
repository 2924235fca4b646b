package events

import (
	"sync"

	"github.com/google/uuid"

	"github.com/openspool/spoolbridge/internal/infrastructure/logging"
)

// Handler receives published events. Handlers run on the publisher's
// goroutine and must not block.
type Handler func(SyncEvent)

type subscriber struct {
	id      string
	handler Handler
}

// Broadcaster fans events out to registered handlers in registration
// order. Safe for concurrent use.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers []subscriber
	closed      bool
	logger      *logging.Logger
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster(logger *logging.Logger) *Broadcaster {
	return &Broadcaster{logger: logger}
}

// Subscribe registers a handler and returns a token for Unsubscribe.
// Subscribing after Close returns an empty token and the handler is
// never called.
func (b *Broadcaster) Subscribe(handler Handler) string {
	if handler == nil {
		return ""
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ""
	}

	id := uuid.New().String()
	b.subscribers = append(b.subscribers, subscriber{id: id, handler: handler})

	return id
}

// Unsubscribe removes a previously registered handler. Unknown tokens
// are ignored.
func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subscribers {
		if sub.id == id {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			return
		}
	}
}

// Publish delivers an event to every subscriber in registration order.
// A panicking subscriber is recovered and logged; remaining subscribers
// still receive the event.
func (b *Broadcaster) Publish(event SyncEvent) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	// Snapshot so a handler can unsubscribe itself without deadlocking.
	subs := make([]subscriber, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.RUnlock()

	for _, sub := range subs {
		b.deliver(sub, event)
	}
}

func (b *Broadcaster) deliver(sub subscriber, event SyncEvent) {
	defer func() {
		if r := recover(); r != nil && b.logger != nil {
			b.logger.Error("event subscriber panicked",
				"subscriber_id", sub.id,
				"event_type", string(event.Type),
				"panic", r)
		}
	}()

	sub.handler(event)
}

// Close drops all subscribers and rejects further publishes. Idempotent.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.subscribers = nil
}
