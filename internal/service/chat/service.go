package chat

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/neem-ai/assistant/backend/internal/config"
	"github.com/neem-ai/assistant/backend/internal/metrics"
	"github.com/neem-ai/assistant/backend/internal/model/chat"
	"github.com/neem-ai/assistant/backend/internal/model/role"
	"github.com/neem-ai/assistant/backend/internal/service/conversation"
	"github.com/neem-ai/assistant/backend/internal/service/monitor"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrRoleNotFound    = errors.New("role not found")
	ErrDraining        = errors.New("session registry is draining")
)

type entry struct {
	session *conversation.Session
	monitor *monitor.Monitor
}

// Service keeps the live conversation sessions, each paired with its
// connection monitor.
type Service struct {
	sender conversation.Sender
	prober monitor.Prober
	roles  role.Store
	cfg    config.SessionConfig

	mu       sync.RWMutex
	sessions map[string]*entry
	draining bool
}

// NewService bootstraps the in-memory session registry.
func NewService(sender conversation.Sender, prober monitor.Prober, roles role.Store, cfg config.SessionConfig) *Service {
	return &Service{
		sender:   sender,
		prober:   prober,
		roles:    roles,
		cfg:      cfg,
		sessions: make(map[string]*entry),
	}
}

// CreateSession opens a session for roleID (default role when empty) and
// starts its monitor. The first probe has run by the time it returns.
func (s *Service) CreateSession(_ context.Context, roleID string) (*conversation.Session, error) {
	if roleID == "" {
		roleID = role.DefaultID
	}
	if _, ok := s.roles.FindByID(roleID); !ok {
		return nil, ErrRoleNotFound
	}

	s.mu.RLock()
	draining := s.draining
	s.mu.RUnlock()
	if draining {
		return nil, ErrDraining
	}

	session := conversation.New(s.sender, conversation.Options{
		Role: roleID,
		Timings: conversation.Timings{
			SentDelay:      s.cfg.StatusSentDelay,
			DeliveredDelay: s.cfg.StatusDeliveredDelay,
		},
	})
	mon := monitor.New(s.prober, session, s.cfg.HealthPollInterval)

	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		session.Close()
		return nil, ErrDraining
	}
	s.sessions[session.ID()] = &entry{session: session, monitor: mon}
	s.mu.Unlock()

	metrics.SessionsActive.Inc()
	mon.Start(context.Background())

	log.Printf("[chat] session %s created, role=%s, connection=%s", session.ID(), roleID, session.Connection())
	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (*conversation.Session, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return e.session, nil
}

// Retry re-runs the health probe of a session immediately.
func (s *Service) Retry(ctx context.Context, sessionID string) (chat.ConnectionState, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return "", err
	}
	return e.monitor.Retry(ctx), nil
}

// SetRole switches the audience role of a session.
func (s *Service) SetRole(_ context.Context, sessionID, roleID string) (chat.Snapshot, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return chat.Snapshot{}, err
	}
	if _, ok := s.roles.FindByID(roleID); !ok {
		return chat.Snapshot{}, ErrRoleNotFound
	}
	e.session.SetRole(roleID)
	return e.session.Snapshot(), nil
}

// CloseSession stops the monitor and timers of a session and forgets it.
func (s *Service) CloseSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	e, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
	}
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	closeEntry(e)
	log.Printf("[chat] session %s closed", sessionID)
	return nil
}

// Shutdown refuses new sessions and closes the open ones.
func (s *Service) Shutdown() {
	s.mu.Lock()
	s.draining = true
	open := s.sessions
	s.sessions = make(map[string]*entry)
	s.mu.Unlock()

	for _, e := range open {
		closeEntry(e)
	}
	log.Printf("[chat] registry drained, closed %d sessions", len(open))
}

// Check is a liveness check that fails once Shutdown has begun.
func (s *Service) Check(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.draining {
		return ErrDraining
	}
	return nil
}

// Count returns the number of open sessions.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Service) lookup(sessionID string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

func closeEntry(e *entry) {
	e.monitor.Stop()
	e.session.Close()
	metrics.SessionsActive.Dec()
}
