package health

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/neem-ai/assistant/backend/internal/model/chat"
	"github.com/neem-ai/assistant/backend/pkg/utils"
)

// Prober produces the liveness report.
type Prober interface {
	CheckHealth(ctx context.Context) (chat.HealthReport, error)
}

// Handler serves the liveness probe.
type Handler struct {
	prober Prober
}

// New creates a health handler.
func New(prober Prober) *Handler {
	return &Handler{prober: prober}
}

// RegisterRoutes registers the probe route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.handleHealth)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	report, err := h.prober.CheckHealth(r.Context())
	if err != nil {
		report = chat.HealthReport{
			Status:    chat.HealthUnhealthy,
			Timestamp: time.Now().UTC(),
			Error:     err.Error(),
		}
	}

	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusInternalServerError
	}
	utils.RespondJSON(w, status, report)
}
