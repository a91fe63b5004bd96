package events

import (
	"sync"

	"github.com/productscience/streampay/x/streampay/types"
)

// MemoryEmitter records events in order. Test helper.
type MemoryEmitter struct {
	mu     sync.Mutex
	events []types.Event
}

var _ types.EventEmitter = (*MemoryEmitter)(nil)

func NewMemoryEmitter() *MemoryEmitter {
	return &MemoryEmitter{}
}

func (e *MemoryEmitter) Emit(event types.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
}

// Events returns a copy of everything emitted so far.
func (e *MemoryEmitter) Events() []types.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]types.Event, len(e.events))
	copy(out, e.events)
	return out
}

// OfType filters recorded events by type.
func (e *MemoryEmitter) OfType(eventType string) []types.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []types.Event
	for _, event := range e.events {
		if event.EventType() == eventType {
			out = append(out, event)
		}
	}
	return out
}
