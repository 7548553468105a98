// Package events provides the in-process event bus used to push game activity to clients.
package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventType identifies an event kind
type EventType string

const (
	CardsGenerated              EventType = "CARDS_GENERATED"
	CardsImported               EventType = "CARDS_IMPORTED"
	MarketIntelligenceActivated EventType = "MARKET_INTELLIGENCE_ACTIVATED"
	DecisionRecorded            EventType = "DECISION_RECORDED"
	PerformanceRebuilt          EventType = "PERFORMANCE_REBUILT"
	PerformanceWeekMerged       EventType = "PERFORMANCE_WEEK_MERGED"
	BackupCompleted             EventType = "BACKUP_COMPLETED"
	SystemStatusChanged         EventType = "SYSTEM_STATUS_CHANGED"
	ErrorOccurred               EventType = "ERROR_OCCURRED"
)

// Event is one published occurrence
type Event struct {
	Type      EventType `json:"type"`
	Module    string    `json:"module"`
	Timestamp time.Time `json:"timestamp"`
	Data      EventData `json:"data"`
}

// Emitter is the publishing side of the bus; services depend on this.
type Emitter interface {
	EmitTyped(module string, data EventData)
}

// Bus fans events out to subscribers.
// Publishing never blocks: a subscriber whose buffer is full misses the event.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]chan Event
	nextID      int
	log         zerolog.Logger
}

// NewBus creates an empty bus
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		subscribers: make(map[int]chan Event),
		log:         log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe registers a subscriber with the given buffer size.
func (b *Bus) Subscribe(buffer int) (int, <-chan Event) {
	if buffer <= 0 {
		buffer = 16
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	ch := make(chan Event, buffer)
	b.subscribers[b.nextID] = ch
	return b.nextID, ch
}

// Unsubscribe removes and closes a subscriber channel. Unknown ids are ignored.
func (b *Bus) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(ch)
	}
}

// EmitTyped publishes typed event data
func (b *Bus) EmitTyped(module string, data EventData) {
	if data == nil {
		return
	}

	evt := Event{
		Type:      data.EventType(),
		Module:    module,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- evt:
		default:
			b.log.Warn().
				Int("subscriber", id).
				Str("event_type", string(evt.Type)).
				Msg("Subscriber buffer full, dropping event")
		}
	}
}

// SubscriberCount returns the number of active subscribers
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
