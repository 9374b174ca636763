package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/neem-ai/assistant/backend/internal/metrics"
	"github.com/neem-ai/assistant/backend/internal/model/chat"
)

// FailureMessage is the caller-facing text for any upstream failure. The
// upstream status and transport detail stay in the server log.
const FailureMessage = "The Neem AI service did not answer. Please try again in a moment."

var (
	// ErrInvalidInput is returned when the query is missing, empty or not a string.
	ErrInvalidInput = errors.New("query is required and must be a string")
	// ErrUnavailable is what in-process senders see when the upstream fails.
	ErrUnavailable = errors.New(FailureMessage)
)

// UpstreamError reports a failed upstream call. Status is zero when the
// upstream could not be reached at all.
type UpstreamError struct {
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream responded with status: %d", e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("upstream unreachable: %v", e.Err)
	}
	return "upstream request failed"
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Request is a single relayed query. Role is optional audience context
// for upstreams that can use it.
type Request struct {
	Query string
	Role  string
}

// Response is the raw upstream answer.
type Response struct {
	Status int
	Body   []byte
}

// Upstream is the AI service the relay forwards to.
type Upstream interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Service forwards queries to the upstream without retry or backoff.
type Service struct {
	upstream Upstream
}

// NewService creates a relay over upstream.
func NewService(upstream Upstream) *Service {
	return &Service{upstream: upstream}
}

// Forward issues exactly one upstream call and returns its JSON body verbatim.
func (s *Service) Forward(ctx context.Context, req Request) (json.RawMessage, error) {
	if req.Query == "" {
		metrics.RelayRequests.WithLabelValues(metrics.OutcomeInvalidInput).Inc()
		return nil, ErrInvalidInput
	}

	start := time.Now()
	resp, err := s.upstream.Complete(ctx, req)
	metrics.UpstreamDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RelayRequests.WithLabelValues(metrics.OutcomeUpstreamError).Inc()
		log.Printf("[relay] upstream call failed: %v", err)
		return nil, &UpstreamError{Err: err}
	}

	if resp.Status < 200 || resp.Status > 299 {
		metrics.RelayRequests.WithLabelValues(metrics.OutcomeUpstreamError).Inc()
		log.Printf("[relay] upstream responded with status: %d", resp.Status)
		return nil, &UpstreamError{Status: resp.Status}
	}

	if !json.Valid(resp.Body) {
		metrics.RelayRequests.WithLabelValues(metrics.OutcomeUpstreamError).Inc()
		log.Printf("[relay] upstream returned a non-JSON body (%d bytes)", len(resp.Body))
		return nil, &UpstreamError{Err: errors.New("upstream returned invalid JSON")}
	}

	metrics.RelayRequests.WithLabelValues(metrics.OutcomeOK).Inc()
	return json.RawMessage(resp.Body), nil
}

// Send relays query and decodes the documented reply shape. It lets an
// in-process conversation session use the relay directly. Upstream
// failures collapse to ErrUnavailable.
func (s *Service) Send(ctx context.Context, query, role string) (chat.Reply, error) {
	body, err := s.Forward(ctx, Request{Query: query, Role: role})
	if err != nil {
		var upErr *UpstreamError
		if errors.As(err, &upErr) {
			return chat.Reply{}, ErrUnavailable
		}
		return chat.Reply{}, err
	}

	var reply chat.Reply
	if err := json.Unmarshal(body, &reply); err != nil {
		return chat.Reply{}, fmt.Errorf("failed to decode upstream reply: %w", err)
	}
	return reply, nil
}
