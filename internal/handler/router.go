package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/neem-ai/assistant/backend/internal/handler/health"
	"github.com/neem-ai/assistant/backend/internal/handler/relay"
	"github.com/neem-ai/assistant/backend/internal/handler/role"
	"github.com/neem-ai/assistant/backend/internal/handler/session"
	"github.com/neem-ai/assistant/backend/internal/metrics"
	middlewarePkg "github.com/neem-ai/assistant/backend/internal/middleware"
	roleModel "github.com/neem-ai/assistant/backend/internal/model/role"
	chatService "github.com/neem-ai/assistant/backend/internal/service/chat"
	healthService "github.com/neem-ai/assistant/backend/internal/service/health"
	relayService "github.com/neem-ai/assistant/backend/internal/service/relay"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(roles roleModel.Store, relaySvc *relayService.Service, healthSvc *healthService.Service, chatSvc *chatService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(api chi.Router) {
		// The relay answers its own preflights with a fixed header set.
		relay.New(relaySvc).RegisterRoutes(api)

		api.Group(func(api chi.Router) {
			api.Use(middlewarePkg.CORS)

			health.New(healthSvc).RegisterRoutes(api)
			role.New(roles).RegisterRoutes(api)

			if chatSvc != nil {
				session.New(chatSvc).RegisterRoutes(api)
			}
		})
	})

	r.Handle("/metrics", metrics.Handler())

	return r
}
