package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/neem-ai/assistant/backend/internal/analysis/category"
	"github.com/neem-ai/assistant/backend/internal/metrics"
	"github.com/neem-ai/assistant/backend/internal/model/chat"
)

var (
	ErrEmptyInput   = errors.New("message text is empty")
	ErrSendPending  = errors.New("a message is already being sent")
	ErrNotConnected = errors.New("not connected to the assistant")
	ErrClosed       = errors.New("session is closed")
)

const (
	// WelcomeText opens every session.
	WelcomeText = "Hello! I'm Neem AI Assistant. I can help you with onboarding, API integration, billing questions, and general support. How can I assist you today?"
	// ErrorReplyPrefix starts the synthetic assistant message appended when a send fails.
	ErrorReplyPrefix = "Sorry, I'm having trouble connecting to the server right now. "

	fallbackFailureText = "Please try again in a moment."
)

// Sender delivers one query to the assistant.
type Sender interface {
	Send(ctx context.Context, query, role string) (chat.Reply, error)
}

// Timings are the cosmetic delays for the delivery-status advances, both
// measured from submission.
type Timings struct {
	SentDelay      time.Duration
	DeliveredDelay time.Duration
}

// DefaultTimings returns the stock 500ms/1s advances.
func DefaultTimings() Timings {
	return Timings{SentDelay: 500 * time.Millisecond, DeliveredDelay: time.Second}
}

// Options configure a new session.
type Options struct {
	ID         string
	Role       string
	Timings    Timings
	Classifier *category.Classifier
}

// Result is the outcome of a submission. Err holds the send failure when
// Reply is the synthetic error message.
type Result struct {
	UserMessage chat.Message `json:"userMessage"`
	Reply       chat.Message `json:"reply"`
	Err         error        `json:"-"`
}

// Session is one conversation: an append-only message log, the delivery
// lifecycle of outbound messages and the connection state. All methods are
// safe for concurrent use.
type Session struct {
	sender     Sender
	classifier *category.Classifier
	timings    Timings
	id         string
	createdAt  time.Time

	mu        sync.Mutex
	role      string
	conn      chat.ConnectionState
	pending   bool
	selected  chat.Category
	messages  []chat.Message
	index     map[string]int
	timers    map[int]*time.Timer
	timerSeq  int
	listeners map[int]chan Event
	listenSeq int
	closed    bool
}

// New creates a session in the connecting state holding only the welcome
// message.
func New(sender Sender, opts Options) *Session {
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.Classifier == nil {
		opts.Classifier = category.NewClassifier(nil)
	}
	if opts.Timings == (Timings{}) {
		opts.Timings = DefaultTimings()
	}

	s := &Session{
		sender:     sender,
		classifier: opts.Classifier,
		timings:    opts.Timings,
		id:         opts.ID,
		createdAt:  time.Now().UTC(),
		role:       opts.Role,
		conn:       chat.ConnectionConnecting,
		selected:   chat.CategoryGeneral,
		index:      make(map[string]int),
		timers:     make(map[int]*time.Timer),
		listeners:  make(map[int]chan Event),
	}

	s.appendLocked(chat.Message{
		ID:        uuid.NewString(),
		Origin:    chat.OriginAssistant,
		Text:      WelcomeText,
		CreatedAt: s.createdAt,
		Category:  chat.CategoryGeneral,
	})
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Submit sends text to the assistant and records the exchange. Empty
// input, a pending send or a missing connection are rejected before any
// message is appended. A failed send is not an error: it yields the
// synthetic error reply with Result.Err set.
func (s *Session) Submit(ctx context.Context, text string) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, ErrEmptyInput
	}

	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return Result{}, ErrClosed
	case s.pending:
		s.mu.Unlock()
		return Result{}, ErrSendPending
	case s.conn != chat.ConnectionConnected:
		s.mu.Unlock()
		return Result{}, ErrNotConnected
	}

	s.pending = true
	detected := s.classifier.Detect(text)
	s.selected = detected
	role := s.role

	userMsg := chat.Message{
		ID:        uuid.NewString(),
		Origin:    chat.OriginUser,
		Text:      text,
		CreatedAt: time.Now().UTC(),
		Status:    chat.StatusSending,
	}
	s.appendLocked(userMsg)
	s.scheduleLocked(userMsg.ID, chat.StatusSent, s.timings.SentDelay)
	s.scheduleLocked(userMsg.ID, chat.StatusDelivered, s.timings.DeliveredDelay)
	s.mu.Unlock()

	reply, sendErr := s.send(ctx, text, role)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = false

	if sendErr != nil {
		log.Printf("[conversation] session %s send failed: %v", s.id, sendErr)
		s.advanceLocked(userMsg.ID, chat.StatusError)
		s.setConnectionLocked(chat.ConnectionError)
		errMsg := chat.Message{
			ID:        uuid.NewString(),
			Origin:    chat.OriginAssistant,
			Text:      ErrorReplyPrefix + failureText(sendErr),
			CreatedAt: time.Now().UTC(),
			Category:  chat.CategoryError,
		}
		s.appendLocked(errMsg)
		return Result{UserMessage: s.messageLocked(userMsg.ID), Reply: errMsg, Err: sendErr}, nil
	}

	s.advanceLocked(userMsg.ID, chat.StatusRead)
	aiMsg := chat.Message{
		ID:        uuid.NewString(),
		Origin:    chat.OriginAssistant,
		Text:      reply.Message,
		CreatedAt: time.Now().UTC(),
		Category:  detected,
	}
	s.appendLocked(aiMsg)
	s.setConnectionLocked(chat.ConnectionConnected)
	return Result{UserMessage: s.messageLocked(userMsg.ID), Reply: aiMsg}, nil
}

// send calls the sender and turns a panic into an ordinary failure, so the
// pending flag is always cleared.
func (s *Session) send(ctx context.Context, text, role string) (reply chat.Reply, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[conversation] session %s sender panicked: %v", s.id, r)
			err = fmt.Errorf("assistant request failed: %v", r)
		}
	}()
	return s.sender.Send(ctx, text, role)
}

func failureText(err error) string {
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return fallbackFailureText
	}
	return msg
}

// SetConnection records a connection state observed by the monitor.
func (s *Session) SetConnection(state chat.ConnectionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.setConnectionLocked(state)
}

// Connection returns the current connection state.
func (s *Session) Connection() chat.ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// Pending reports whether a send is in flight.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Role returns the audience role id.
func (s *Session) Role() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role
}

// SetRole switches the audience role for subsequent sends.
func (s *Session) SetRole(roleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.role == roleID {
		return
	}
	s.role = roleID
	s.publishLocked(Event{Type: EventRole, Role: roleID})
}

// Snapshot copies the session state.
func (s *Session) Snapshot() chat.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return chat.Snapshot{
		ID:               s.id,
		Role:             s.role,
		Connection:       s.conn,
		Pending:          s.pending,
		SelectedCategory: s.selected,
		CreatedAt:        s.createdAt,
		Messages:         append([]chat.Message(nil), s.messages...),
	}
}

// Messages returns the log in order, keeping only messages whose category
// matches filter. An empty filter returns everything; user messages carry
// no category and are dropped by a non-empty filter.
func (s *Session) Messages(filter chat.Category) []chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]chat.Message, 0, len(s.messages))
	for _, m := range s.messages {
		if filter != "" && m.Category != filter {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Close stops pending timers and ends every subscription. An in-flight
// send still completes but its result is only recorded in the closed log.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true

	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	for id, ch := range s.listeners {
		close(ch)
		delete(s.listeners, id)
	}
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) appendLocked(m chat.Message) {
	s.index[m.ID] = len(s.messages)
	s.messages = append(s.messages, m)

	cat := string(m.Category)
	if cat == "" {
		cat = "none"
	}
	metrics.MessagesAppended.WithLabelValues(string(m.Origin), cat).Inc()

	msg := m
	s.publishLocked(Event{Type: EventMessage, Message: &msg})
}

func (s *Session) messageLocked(id string) chat.Message {
	return s.messages[s.index[id]]
}

// advanceLocked moves a message forward in its lifecycle. Backward and
// post-error moves are dropped.
func (s *Session) advanceLocked(id string, status chat.DeliveryStatus) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	if !s.messages[i].Status.CanAdvanceTo(status) {
		return
	}
	s.messages[i].Status = status

	msg := s.messages[i]
	s.publishLocked(Event{Type: EventStatus, Message: &msg})
}

func (s *Session) setConnectionLocked(state chat.ConnectionState) {
	if s.conn == state {
		return
	}
	s.conn = state
	metrics.ConnectionTransitions.WithLabelValues(string(state)).Inc()
	s.publishLocked(Event{Type: EventConnection, Connection: state})
}

func (s *Session) scheduleLocked(id string, status chat.DeliveryStatus, delay time.Duration) {
	s.timerSeq++
	key := s.timerSeq
	s.timers[key] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.timers, key)
		if s.closed {
			return
		}
		s.advanceLocked(id, status)
	})
}
