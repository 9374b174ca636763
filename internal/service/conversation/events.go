package conversation

import (
	"time"

	"github.com/neem-ai/assistant/backend/internal/model/chat"
)

// EventType names a session change.
type EventType string

const (
	EventMessage    EventType = "message"
	EventStatus     EventType = "status"
	EventConnection EventType = "connection"
	EventRole       EventType = "role"
)

// Event is pushed to subscribers whenever the session changes.
type Event struct {
	Type       EventType            `json:"type"`
	SessionID  string               `json:"sessionId"`
	Message    *chat.Message        `json:"message,omitempty"`
	Connection chat.ConnectionState `json:"connection,omitempty"`
	Role       string               `json:"role,omitempty"`
	Timestamp  time.Time            `json:"timestamp"`
}

const defaultSubscriberBuffer = 32

// Subscribe returns a channel of session events and a function that ends
// the subscription. The channel is closed when the session closes. Slow
// subscribers miss events rather than stall the session.
func (s *Session) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Event, defaultSubscriberBuffer)
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	s.listenSeq++
	key := s.listenSeq
	s.listeners[key] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if existing, ok := s.listeners[key]; ok {
			close(existing)
			delete(s.listeners, key)
		}
	}
}

func (s *Session) publishLocked(ev Event) {
	ev.SessionID = s.id
	ev.Timestamp = time.Now().UTC()

	for _, ch := range s.listeners {
		select {
		case ch <- ev:
		default:
		}
	}
}
