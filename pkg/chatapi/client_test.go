package chatapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/neem-ai/assistant/backend/internal/model/chat"
)

func TestSendDecodesReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/chat" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload["query"] != "hello" || payload["role"] != "finance" {
			t.Errorf("unexpected payload: %v", payload)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Hi there","status":200}`))
	}))
	defer srv.Close()

	reply, err := New(srv.URL+"/", nil).Send(context.Background(), "hello", "finance")
	if err != nil {
		t.Fatalf("Send err: %v", err)
	}
	if reply.Message != "Hi there" || reply.Status != 200 {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}

func TestSendTranslatesErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"message field", `{"error":"Failed to connect to Neem AI API","message":"try later"}`, "try later"},
		{"error field", `{"error":"Query is required and must be a string"}`, "Query is required and must be a string"},
		{"not json", `<html>bad gateway</html>`, "HTTP 502"},
		{"empty object", `{}`, "Failed to get AI response"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, nil).Send(context.Background(), "hello", "")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Message != tc.want || apiErr.StatusCode != http.StatusBadGateway {
				t.Fatalf("unexpected error: %+v", apiErr)
			}
		})
	}
}

func TestSendNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, nil).Send(context.Background(), "hello", "")
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if err.Error() != "Network connection failed. Please check your internet connection." {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

func TestCheckHealth(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":"healthy","timestamp":"2026-01-02T03:04:05Z","service":"Neem AI Assistant API"}`))
	}))
	defer healthy.Close()

	report, err := New(healthy.URL, nil).CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth err: %v", err)
	}
	if !report.Healthy() || report.Service != "Neem AI Assistant API" {
		t.Fatalf("unexpected report: %+v", report)
	}

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"status":"unhealthy","timestamp":"2026-01-02T03:04:05Z","error":"draining"}`))
	}))
	defer failing.Close()

	report, err = New(failing.URL, nil).CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth err: %v", err)
	}
	if report.Healthy() || report.Error != "draining" {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Status != chat.HealthUnhealthy {
		t.Fatalf("expected unhealthy, got %s", report.Status)
	}
}

func TestCheckHealthUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if _, err := New(url, nil).CheckHealth(context.Background()); err == nil {
		t.Fatal("expected error for unreachable server")
	}
}
