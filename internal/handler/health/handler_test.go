package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	healthService "github.com/neem-ai/assistant/backend/internal/service/health"
)

func serve(svc *healthService.Service) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	New(svc).RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestHealthHealthy(t *testing.T) {
	resp := serve(healthService.NewService("Neem AI Assistant API"))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var payload map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload["status"] != "healthy" || payload["service"] != "Neem AI Assistant API" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if _, ok := payload["timestamp"].(string); !ok {
		t.Fatalf("expected timestamp string, got %v", payload["timestamp"])
	}
	if _, ok := payload["error"]; ok {
		t.Fatal("healthy payload must not carry error")
	}
}

func TestHealthUnhealthy(t *testing.T) {
	svc := healthService.NewService("Neem AI Assistant API")
	svc.Register("draining", func(context.Context) error { return errors.New("session registry is draining") })

	resp := serve(svc)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}

	var payload map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload["status"] != "unhealthy" || payload["error"] != "session registry is draining" {
		t.Fatalf("unexpected payload: %v", payload)
	}
}
