package role

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/neem-ai/assistant/backend/internal/model/role"
	"github.com/neem-ai/assistant/backend/pkg/utils"
)

// Handler serves the audience role catalogue.
type Handler struct {
	roles role.Store
}

// New creates a role handler.
func New(roles role.Store) *Handler {
	return &Handler{roles: roles}
}

// RegisterRoutes registers the role routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/roles", h.handleListRoles)
}

func (h *Handler) handleListRoles(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.roles.List())
}
