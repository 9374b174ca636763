// Package chatapi is a Go client for the assistant relay. It applies the
// same error translation as the browser client: transport failures become
// a fixed network message and non-2xx answers surface the server's
// message or error field.
package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/neem-ai/assistant/backend/internal/model/chat"
)

const (
	networkFailureMessage = "Network connection failed. Please check your internet connection."
	defaultFailureMessage = "Failed to get AI response"
)

// NetworkError reports a request that never got an HTTP response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return networkFailureMessage }

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError reports a non-2xx answer.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string { return e.Message }

// Client talks to a running relay.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the server at baseURL. A nil httpClient uses
// http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type chatPayload struct {
	Query string `json:"query"`
	Role  string `json:"role,omitempty"`
}

// Send posts query to /api/chat and decodes the reply.
func (c *Client) Send(ctx context.Context, query, role string) (chat.Reply, error) {
	body, err := json.Marshal(chatPayload{Query: query, Role: role})
	if err != nil {
		return chat.Reply{}, fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return chat.Reply{}, fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return chat.Reply{}, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return chat.Reply{}, &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return chat.Reply{}, decodeAPIError(resp.StatusCode, data)
	}

	var reply chat.Reply
	if err := json.Unmarshal(data, &reply); err != nil {
		return chat.Reply{}, fmt.Errorf("decode chat reply: %w", err)
	}
	return reply, nil
}

func decodeAPIError(status int, data []byte) *APIError {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		payload.Error = "Network error"
		payload.Message = fmt.Sprintf("HTTP %d", status)
	}

	msg := payload.Message
	if msg == "" {
		msg = payload.Error
	}
	if msg == "" {
		msg = defaultFailureMessage
	}
	return &APIError{StatusCode: status, Message: msg}
}

// CheckHealth probes /api/health. Any HTTP answer yields a report; only a
// transport failure returns an error.
func (c *Client) CheckHealth(ctx context.Context) (chat.HealthReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return chat.HealthReport{}, fmt.Errorf("create health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return chat.HealthReport{}, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	var report chat.HealthReport
	if decodeErr := json.NewDecoder(resp.Body).Decode(&report); decodeErr != nil || report.Status == "" {
		report = chat.HealthReport{Status: chat.HealthUnhealthy, Timestamp: time.Now().UTC()}
		if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			report.Status = chat.HealthHealthy
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		report.Status = chat.HealthUnhealthy
	}
	return report, nil
}
