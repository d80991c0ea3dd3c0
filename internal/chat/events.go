package chat

import (
	"sync"
	"time"
)

// EventType identifies a class of client event.
type EventType string

const (
	// EventConnectionChanged fires when transport-level connectivity flips.
	// Online carries the new state.
	EventConnectionChanged EventType = "connection.changed"

	// EventConnectionEstablished fires when the first connection to the
	// backend completes.
	EventConnectionEstablished EventType = "connection.established"

	// EventConnectionRecovered fires when the connection is re-established
	// after a drop.
	EventConnectionRecovered EventType = "connection.recovered"

	// EventMessageNew fires for every inbound chat message.
	EventMessageNew EventType = "message.new"
)

// Event is the payload delivered to subscribers.
type Event struct {
	Type       EventType
	Online     bool     // set for connection events
	Message    *Message // set for EventMessageNew
	ReceivedAt time.Time
}

// Subscription is a single event registration. Cancel releases exactly this
// registration; other subscribers to the same event type are unaffected.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Cancel releases the registration. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

// Emitter fans events out to per-type subscriber sets. The zero value is
// ready to use. Client implementations and test doubles embed it to offer
// the Subscribe surface the bridge expects.
type Emitter struct {
	mu     sync.Mutex
	nextID int
	subs   map[EventType]map[int]func(Event)
}

func (e *Emitter) Subscribe(t EventType, fn func(Event)) *Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.subs == nil {
		e.subs = make(map[EventType]map[int]func(Event))
	}
	if e.subs[t] == nil {
		e.subs[t] = make(map[int]func(Event))
	}
	e.nextID++
	id := e.nextID
	e.subs[t][id] = fn

	return &Subscription{cancel: func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.subs[t], id)
	}}
}

func (e *Emitter) Emit(ev Event) {
	if ev.ReceivedAt.IsZero() {
		ev.ReceivedAt = time.Now()
	}

	e.mu.Lock()
	fns := make([]func(Event), 0, len(e.subs[ev.Type]))
	for _, fn := range e.subs[ev.Type] {
		fns = append(fns, fn)
	}
	e.mu.Unlock()

	// callbacks run outside the lock so they may subscribe or cancel
	for _, fn := range fns {
		fn(ev)
	}
}
