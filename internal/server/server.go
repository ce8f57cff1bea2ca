package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/budget-be/internal/config"
	"github.com/hongminglow/budget-be/internal/http/handlers"
	"github.com/hongminglow/budget-be/internal/metrics"
	"github.com/hongminglow/budget-be/internal/middleware"
)

// Deps are the services the HTTP layer is wired to.
type Deps struct {
	Accounts interface {
		handlers.Registrar
		handlers.AccountDirectory
	}
	Ledger        handlers.Ledger
	Authenticator interface {
		handlers.Authenticator
		middleware.TokenAuthenticator
	}
	DB handlers.Pinger
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner   *http.Server
	limiter *middleware.IPRateLimiter
	ctx     context.Context
	stop    context.CancelFunc
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	m := metrics.New()
	limiter := middleware.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	r := chi.NewRouter()
	r.Use(middleware.Logging, m.Instrument, middleware.CORS(cfg.CORSOrigins))

	handlers.NewHealthHandler(time.Now(), deps.DB).Register(r)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)
		handlers.NewAuthHandler(deps.Accounts, deps.Authenticator).Register(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(deps.Authenticator))
		handlers.NewUserHandler(deps.Accounts, cfg.DefaultPageSize, cfg.MaxPageSize).Register(r)
		handlers.NewTransactionHandler(deps.Ledger).Register(r)
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := context.WithCancel(context.Background())
	return &Server{inner: httpServer, limiter: limiter, ctx: ctx, stop: stop}
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.inner.Handler
}

// Start begins serving HTTP traffic. It blocks until the server stops.
func (s *Server) Start() error {
	go s.limiter.RunJanitor(s.ctx, time.Minute)
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stop()
	return s.inner.Shutdown(ctx)
}
