package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ricardoprins-paqt/vue-design-patterns/internal/logfields"
)

// Handler processes one event. Returning an error aborts delivery to the
// remaining handlers.
type Handler func(Event) error

// Bus is a synchronous in-process pub/sub bus. When a journal is attached,
// events persist before delivery; journal failures are logged, never fatal.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
	journal     *Journal
	log         *slog.Logger
}

// NewBus creates a bus without persistence.
func NewBus(log *slog.Logger) *Bus {
	if log == nil {
		log = slog.Default()
	}
	return &Bus{subscribers: map[string][]Handler{}, log: log}
}

// NewJournaledBus creates a bus that records every published event.
func NewJournaledBus(journal *Journal, log *slog.Logger) *Bus {
	b := NewBus(log)
	b.journal = journal
	return b
}

// Subscribe registers a handler for one event type.
func (b *Bus) Subscribe(eventType string, h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	b.subscribers[eventType] = append(b.subscribers[eventType], h)
	b.mu.Unlock()
}

// Publish journals the event and delivers it to subscribers in order.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	if b.journal != nil {
		if err := b.journal.Append(ctx, e.BuildID, e.Type, e.Payload); err != nil {
			b.log.Warn("journal append failed",
				logfields.BuildID(e.BuildID),
				slog.String("event", e.Type),
				logfields.Error(err))
		}
	}

	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[e.Type]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h(e); err != nil {
			return err
		}
	}
	return nil
}
