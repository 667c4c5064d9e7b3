package server

import (
	"sync"
)

// Event types published on a session's stream.
const (
	EventSong     = "song"
	EventTick     = "tick"
	EventAnswer   = "answer"
	EventTimeUp   = "time_up"
	EventGameOver = "game_over"
	EventReset    = "reset"
)

// Event is one message on a session stream. Data is encoded as JSON.
type Event struct {
	Type string
	Data any
}

// Broker is an in-process pub/sub for session events, keyed by session ID.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan Event]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe returns a channel that receives events for the given session.
func (b *Broker) Subscribe(sessionID string) chan Event {
	ch := make(chan Event, 64)
	b.mu.Lock()
	if b.subs[sessionID] == nil {
		b.subs[sessionID] = make(map[chan Event]struct{})
	}
	b.subs[sessionID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(sessionID string, ch chan Event) {
	b.mu.Lock()
	delete(b.subs[sessionID], ch)
	if len(b.subs[sessionID]) == 0 {
		delete(b.subs, sessionID)
	}
	b.mu.Unlock()
}

// Publish fans an event out to every subscriber of the session.
func (b *Broker) Publish(sessionID string, event Event) {
	b.mu.RLock()
	for ch := range b.subs[sessionID] {
		select {
		case ch <- event:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}

// Subscribers reports how many streams are attached to the session.
func (b *Broker) Subscribers(sessionID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[sessionID])
}
