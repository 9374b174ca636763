package relay

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/neem-ai/assistant/backend/internal/middleware"
	relayService "github.com/neem-ai/assistant/backend/internal/service/relay"
	"github.com/neem-ai/assistant/backend/pkg/utils"
)

const (
	invalidQueryMessage  = "Query is required and must be a string"
	upstreamFailureError = "Failed to connect to Neem AI API"
)

// Handler exposes the relay to browser clients.
type Handler struct {
	relaySvc *relayService.Service
}

// New creates a relay handler.
func New(relaySvc *relayService.Service) *Handler {
	return &Handler{relaySvc: relaySvc}
}

// RegisterRoutes registers the relay endpoint and its preflight responder.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Options("/chat", h.handlePreflight)
}

type chatRequest struct {
	Query json.RawMessage `json:"query"`
	Role  string          `json:"role"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	middleware.SetRelayCORSHeaders(w.Header())

	var payload chatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, invalidQueryMessage)
		return
	}

	query, ok := decodeQuery(payload.Query)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, invalidQueryMessage)
		return
	}

	body, err := h.relaySvc.Forward(r.Context(), relayService.Request{Query: query, Role: payload.Role})
	if err != nil {
		if errors.Is(err, relayService.ErrInvalidInput) {
			utils.RespondError(w, http.StatusBadRequest, invalidQueryMessage)
			return
		}
		utils.RespondJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   upstreamFailureError,
			"message": relayService.FailureMessage,
		})
		return
	}

	utils.RespondRawJSON(w, http.StatusOK, body)
}

// decodeQuery accepts only a JSON string; numbers, objects and null are
// rejected like a missing field.
func decodeQuery(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var query string
	if err := json.Unmarshal(raw, &query); err != nil {
		return "", false
	}
	return query, query != ""
}

func (h *Handler) handlePreflight(w http.ResponseWriter, _ *http.Request) {
	middleware.SetRelayCORSHeaders(w.Header())
	w.WriteHeader(http.StatusOK)
}
