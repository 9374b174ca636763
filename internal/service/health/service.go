package health

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/neem-ai/assistant/backend/internal/model/chat"
)

// Check is a liveness check. A non-nil error marks the service unhealthy.
type Check func(ctx context.Context) error

type namedCheck struct {
	name  string
	check Check
}

// Service answers the liveness probe.
type Service struct {
	name string
	now  func() time.Time

	mu     sync.RWMutex
	checks []namedCheck
}

// NewService creates a probe reporting under serviceName.
func NewService(serviceName string) *Service {
	return &Service{
		name: serviceName,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Register adds a liveness check evaluated on every probe.
func (s *Service) Register(name string, check Check) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks = append(s.checks, namedCheck{name: name, check: check})
}

// CheckHealth runs the registered checks. It always returns a report; an
// unhealthy report carries the first failure message. A panicking check
// is reported as unhealthy instead of taking the probe down.
func (s *Service) CheckHealth(ctx context.Context) (report chat.HealthReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[health] check panicked: %v", r)
			report = chat.HealthReport{
				Status:    chat.HealthUnhealthy,
				Timestamp: s.now(),
				Error:     fmt.Sprint(r),
			}
			err = nil
		}
	}()

	s.mu.RLock()
	checks := append([]namedCheck(nil), s.checks...)
	s.mu.RUnlock()

	for _, c := range checks {
		if checkErr := c.check(ctx); checkErr != nil {
			log.Printf("[health] check %s failed: %v", c.name, checkErr)
			return chat.HealthReport{
				Status:    chat.HealthUnhealthy,
				Timestamp: s.now(),
				Error:     checkErr.Error(),
			}, nil
		}
	}

	return chat.HealthReport{
		Status:    chat.HealthHealthy,
		Timestamp: s.now(),
		Service:   s.name,
	}, nil
}
