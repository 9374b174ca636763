package monitor

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/neem-ai/assistant/backend/internal/model/chat"
)

// Prober runs one liveness probe. An error means the probe could not be
// reached; an unhealthy report means it answered but is not healthy.
type Prober interface {
	CheckHealth(ctx context.Context) (chat.HealthReport, error)
}

// Sink receives connection state changes.
type Sink interface {
	SetConnection(state chat.ConnectionState)
}

// Classify maps one probe outcome to a connection state.
func Classify(report chat.HealthReport, err error) chat.ConnectionState {
	if err != nil {
		return chat.ConnectionError
	}
	if report.Healthy() {
		return chat.ConnectionConnected
	}
	return chat.ConnectionDisconnected
}

// Monitor polls a Prober on a fixed interval and pushes the mapped state
// into a Sink. It does not back off and does not cancel an in-flight probe
// when another starts.
type Monitor struct {
	prober   Prober
	sink     Sink
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a monitor. Nothing runs until Start.
func New(prober Prober, sink Sink, interval time.Duration) *Monitor {
	return &Monitor{prober: prober, sink: sink, interval: interval}
}

// Start probes once immediately and then every interval until Stop or ctx
// is done. Calling Start on a running monitor is a no-op.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	done := m.done
	m.mu.Unlock()

	m.Check(loopCtx)

	go func() {
		defer close(done)

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				m.Check(loopCtx)
			}
		}
	}()
}

// Check runs one probe and publishes the result. The state reads
// connecting while the probe is outstanding.
func (m *Monitor) Check(ctx context.Context) chat.ConnectionState {
	m.sink.SetConnection(chat.ConnectionConnecting)

	report, err := m.prober.CheckHealth(ctx)
	state := Classify(report, err)
	if err != nil {
		log.Printf("[monitor] health probe failed: %v", err)
	}

	m.sink.SetConnection(state)
	return state
}

// Retry re-runs the probe on demand, outside the timer.
func (m *Monitor) Retry(ctx context.Context) chat.ConnectionState {
	return m.Check(ctx)
}

// Stop cancels the polling loop and waits for it to exit.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
