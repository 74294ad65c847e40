package receiver

import "sync"

// EventType classifies receiver events.
type EventType string

const (
	// EventNewData fires after any mutating intent has been applied to the
	// thread store. Listeners can re-read in-memory state immediately; the
	// durable flush may still be in flight.
	EventNewData EventType = "new_data"
	// EventThreadResolved fires once per SetResolved call, whether or not
	// the flag actually changed.
	EventThreadResolved EventType = "thread_resolved"
	// EventTargetSet fires after the active target actually changed.
	EventTargetSet EventType = "target_set"
)

// Event is a domain signal from the receiver.
type Event struct {
	Type     EventType
	Target   string
	ThreadID string
	Resolved bool
}

type hub struct {
	mu          sync.Mutex
	subscribers map[chan Event]struct{}
}

func newHub() *hub {
	return &hub{subscribers: make(map[chan Event]struct{})}
}

func (h *hub) subscribe() chan Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan Event, 32)
	h.subscribers[ch] = struct{}{}
	return ch
}

func (h *hub) unsubscribe(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscribers, ch)
	close(ch)
}

func (h *hub) emit(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- ev:
		default:
			// Non-blocking send to prevent slow listeners from stalling intents
		}
	}
}
