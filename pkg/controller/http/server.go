package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	githubcontroller "github.com/m-mizutani/spotless-bot/pkg/controller/github"
	"github.com/m-mizutani/spotless-bot/pkg/domain/interfaces"
	"github.com/m-mizutani/spotless-bot/pkg/domain/types"
)

// config holds internal HTTP server configuration
type config struct {
	addr          string
	webhookSecret string
	devMode       bool
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithWebhookSecret sets the webhook secret
func WithWebhookSecret(secret string) Option {
	return func(c *config) {
		c.webhookSecret = secret
	}
}

// WithDevMode allows running without a webhook secret. Signatures are not
// verified in that case.
func WithDevMode(enabled bool) Option {
	return func(c *config) {
		c.devMode = enabled
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	ctx context.Context,
	commandUC interfaces.CommandUseCase,
	opts ...Option,
) (*Server, error) {
	// Default configuration
	cfg := &config{
		addr: "localhost:8080",
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.webhookSecret == "" {
		if !cfg.devMode {
			return nil, goerr.New("webhook secret is required unless dev mode is enabled",
				goerr.T(types.ErrTagConfig),
			)
		}
		ctxlog.From(ctx).Warn("Webhook secret is not set, signature verification is disabled")
	}

	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	router.Get("/status", handleStatus)
	router.Get("/health", handleHealth)

	// Webhook endpoint
	webhookHandler := NewWebhookHandler(cfg.webhookSecret, githubcontroller.NewEventProcessor(commandUC))
	router.Post("/github", webhookHandler.Handle)

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}
