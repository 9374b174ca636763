package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// SkipBrowserWarningHeader tells the ngrok tunnel in front of the AI
// service not to serve its interstitial page.
const SkipBrowserWarningHeader = "ngrok-skip-browser-warning"

// HTTPUpstream posts queries to a fixed AI service URL.
type HTTPUpstream struct {
	url         string
	client      *http.Client
	skipWarning bool
}

// NewHTTPUpstream creates an upstream for url. A nil client selects a
// client with the transport defaults and no timeout.
func NewHTTPUpstream(url string, skipWarning bool, client *http.Client) *HTTPUpstream {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPUpstream{url: url, client: client, skipWarning: skipWarning}
}

// Complete sends {"query": ...} and returns the status and body as received.
func (u *HTTPUpstream) Complete(ctx context.Context, req Request) (*Response, error) {
	payload, err := json.Marshal(map[string]string{"query": req.Query})
	if err != nil {
		return nil, fmt.Errorf("failed to encode upstream payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if u.skipWarning {
		httpReq.Header.Set(SkipBrowserWarningHeader, "true")
	}

	resp, err := u.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upstream body: %w", err)
	}

	return &Response{Status: resp.StatusCode, Body: body}, nil
}
