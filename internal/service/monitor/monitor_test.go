package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/neem-ai/assistant/backend/internal/model/chat"
	"github.com/neem-ai/assistant/backend/internal/service/conversation"
)

type scriptedProber struct {
	mu      sync.Mutex
	reports []chat.HealthReport
	errs    []error
	calls   int
}

func (p *scriptedProber) CheckHealth(context.Context) (chat.HealthReport, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.calls
	if i >= len(p.reports) {
		i = len(p.reports) - 1
	}
	p.calls++
	return p.reports[i], p.errs[i]
}

func (p *scriptedProber) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type recordingSink struct {
	mu     sync.Mutex
	states []chat.ConnectionState
}

func (s *recordingSink) SetConnection(state chat.ConnectionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = append(s.states, state)
}

func (s *recordingSink) history() []chat.ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]chat.ConnectionState(nil), s.states...)
}

func healthy() chat.HealthReport {
	return chat.HealthReport{Status: chat.HealthHealthy, Timestamp: time.Now()}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		report chat.HealthReport
		err    error
		want   chat.ConnectionState
	}{
		{"healthy", healthy(), nil, chat.ConnectionConnected},
		{"unhealthy", chat.HealthReport{Status: chat.HealthUnhealthy}, nil, chat.ConnectionDisconnected},
		{"unexpected status", chat.HealthReport{Status: "degraded"}, nil, chat.ConnectionDisconnected},
		{"unreachable", chat.HealthReport{}, errors.New("dial tcp: refused"), chat.ConnectionError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.report, tt.err); got != tt.want {
				t.Fatalf("Classify = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestStartProbesImmediately(t *testing.T) {
	prober := &scriptedProber{reports: []chat.HealthReport{healthy()}, errs: []error{nil}}
	sink := &recordingSink{}

	m := New(prober, sink, time.Hour)
	m.Start(context.Background())
	defer m.Stop()

	got := sink.history()
	if len(got) != 2 || got[0] != chat.ConnectionConnecting || got[1] != chat.ConnectionConnected {
		t.Fatalf("unexpected transitions: %v", got)
	}
}

func TestRetryRecoversFromError(t *testing.T) {
	prober := &scriptedProber{
		reports: []chat.HealthReport{{}, healthy()},
		errs:    []error{errors.New("unreachable"), nil},
	}
	sink := &recordingSink{}

	m := New(prober, sink, time.Hour)
	m.Start(context.Background())
	defer m.Stop()

	if got := sink.history(); got[len(got)-1] != chat.ConnectionError {
		t.Fatalf("expected error after failed probe, got %v", got)
	}

	if state := m.Retry(context.Background()); state != chat.ConnectionConnected {
		t.Fatalf("Retry = %s, want connected", state)
	}

	want := []chat.ConnectionState{
		chat.ConnectionConnecting, chat.ConnectionError,
		chat.ConnectionConnecting, chat.ConnectionConnected,
	}
	got := sink.history()
	if len(got) != len(want) {
		t.Fatalf("unexpected transitions: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("transition %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestPollsOnInterval(t *testing.T) {
	prober := &scriptedProber{reports: []chat.HealthReport{healthy()}, errs: []error{nil}}
	sink := &recordingSink{}

	m := New(prober, sink, 10*time.Millisecond)
	m.Start(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for prober.callCount() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("expected repeated probes, got %d", prober.callCount())
		}
		time.Sleep(5 * time.Millisecond)
	}

	m.Stop()
	calls := prober.callCount()
	time.Sleep(50 * time.Millisecond)
	if prober.callCount() != calls {
		t.Fatal("probes continued after Stop")
	}
}

func TestStopWithoutStart(t *testing.T) {
	m := New(&scriptedProber{}, &recordingSink{}, time.Second)
	m.Stop()
}

type echoSender struct{}

func (echoSender) Send(context.Context, string, string) (chat.Reply, error) {
	return chat.Reply{Message: "ok", Status: 200}, nil
}

func TestFailedCheckBlocksSubmitUntilRetry(t *testing.T) {
	prober := &scriptedProber{
		reports: []chat.HealthReport{healthy(), {}, healthy()},
		errs:    []error{nil, errors.New("dial tcp: connection refused"), nil},
	}
	session := conversation.New(echoSender{}, conversation.Options{
		Timings: conversation.Timings{SentDelay: time.Hour, DeliveredDelay: time.Hour},
	})
	defer session.Close()

	ctx := context.Background()
	m := New(prober, session, time.Hour)
	m.Start(ctx)
	defer m.Stop()

	if got := session.Connection(); got != chat.ConnectionConnected {
		t.Fatalf("after first check: %s, want connected", got)
	}

	if got := m.Check(ctx); got != chat.ConnectionError {
		t.Fatalf("Check = %s, want error", got)
	}
	if got := session.Connection(); got != chat.ConnectionError {
		t.Fatalf("session connection = %s, want error", got)
	}
	if _, err := session.Submit(ctx, "hello"); !errors.Is(err, conversation.ErrNotConnected) {
		t.Fatalf("Submit err = %v, want ErrNotConnected", err)
	}

	if got := m.Retry(ctx); got != chat.ConnectionConnected {
		t.Fatalf("Retry = %s, want connected", got)
	}
	res, err := session.Submit(ctx, "hello")
	if err != nil {
		t.Fatalf("Submit after retry err: %v", err)
	}
	if res.Err != nil || res.Reply.Text != "ok" {
		t.Fatalf("unexpected result after retry: %+v", res)
	}
	if n := prober.callCount(); n != 3 {
		t.Fatalf("expected 3 probes, got %d", n)
	}
}
