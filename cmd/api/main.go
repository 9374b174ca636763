package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/neem-ai/assistant/backend/internal/config"
	"github.com/neem-ai/assistant/backend/internal/handler"
	"github.com/neem-ai/assistant/backend/internal/model/role"
	"github.com/neem-ai/assistant/backend/internal/service/ai"
	"github.com/neem-ai/assistant/backend/internal/service/chat"
	"github.com/neem-ai/assistant/backend/internal/service/health"
	"github.com/neem-ai/assistant/backend/internal/service/relay"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	roleStore := role.NewMemoryStore(role.Seed())

	upstream, err := newUpstream(ctx, cfg, roleStore)
	if err != nil {
		log.Fatalf("failed to initialize upstream: %v", err)
	}
	relayService := relay.NewService(upstream)

	healthService := health.NewService(cfg.Server.ServiceName)
	chatService := chat.NewService(relayService, healthService, roleStore, cfg.Session)
	healthService.Register("sessions", chatService.Check)

	router := handler.NewRouter(roleStore, relayService, healthService, chatService)

	startServer(ctx, cfg.Server, router, chatService.Shutdown)
}

func newUpstream(ctx context.Context, cfg *config.Config, roles role.Store) (relay.Upstream, error) {
	if cfg.Upstream.Mode == config.UpstreamArk {
		chatModel, err := cfg.AI.NewChatModel(ctx)
		if err != nil {
			return nil, err
		}
		svc, err := ai.NewService(ctx, chatModel, roles)
		if err != nil {
			return nil, err
		}
		log.Printf("answering with Ark model %s", cfg.AI.Model)
		return svc, nil
	}

	log.Printf("relaying to %s", cfg.Upstream.URL)
	return relay.NewHTTPUpstream(cfg.Upstream.URL, cfg.Upstream.SkipBrowserWarning, nil), nil
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, onShutdown func()) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("%s listening on %s", serverCfg.ServiceName, addr)
	if err := runServer(ctx, srv, onShutdown); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// runServer serves until ctx is done. onShutdown runs before the listener
// drains so long-lived streams end promptly.
func runServer(ctx context.Context, srv *http.Server, onShutdown func()) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		if onShutdown != nil {
			onShutdown()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
