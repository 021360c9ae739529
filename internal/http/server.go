// Package http exposes the ledger, analytics, export and community
// operations as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"dauvest/internal/auth"
	"dauvest/internal/log"
	"dauvest/internal/middleware/ratelimit"
	"dauvest/internal/middleware/security"
	"dauvest/internal/middleware/trace"
	"dauvest/internal/services"
	"dauvest/internal/social"
)

// ReadinessCheck probes one dependency for /readyz.
type ReadinessCheck func(ctx context.Context) error

// Deps are the collaborators the server routes to.
type Deps struct {
	Ledger             *services.LedgerService
	Social             *social.Engine
	Tokens             *auth.Tokens
	Logger             *log.Logger
	RateLimitPerMinute int
	Checks             map[string]ReadinessCheck
}

type Server struct {
	http.Server

	ledger   *services.LedgerService
	social   *social.Engine
	tokens   *auth.Tokens
	logger   *log.Logger
	checks   map[string]ReadinessCheck
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	detector *security.Detector
	started  time.Time
	now      func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		ledger:   deps.Ledger,
		social:   deps.Social,
		tokens:   deps.Tokens,
		logger:   logger,
		checks:   deps.Checks,
		detector: security.NewDetector(),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimitPerMinute}),
		started:  time.Now(),
		now:      time.Now,
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ClientIP)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.tracer.Middleware)
	r.Use(chimw.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.detector.Middleware(s.reportSuspicious))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limiter.Middleware(s.detector.ClientIP, s.rejectRateLimited))
		r.Use(s.tokens.Middleware(s.rejectToken))

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.Post("/", s.handleCreateTransaction)
			r.Put("/{id}", s.handleUpdateTransaction)
			r.Delete("/{id}", s.handleDeleteTransaction)
		})
		r.Route("/goals", func(r chi.Router) {
			r.Get("/", s.handleListGoals)
			r.Post("/", s.handleCreateGoal)
			r.Put("/{id}", s.handleUpdateGoal)
			r.Delete("/{id}", s.handleDeleteGoal)
		})
		r.Get("/categories", s.handleCategories)

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/chart", s.handleChart)
			r.Get("/summary", s.handleSummary)
			r.Get("/categories", s.handleCategoryBreakdown)
			r.Get("/overview", s.handleOverview)
		})
		r.Get("/export.xlsx", s.handleExport)

		r.Route("/community", func(r chi.Router) {
			r.Use(requireIdentity, s.recordIdentity)
			r.Get("/posts", s.handleFeed)
			r.Post("/posts", s.handleCreatePost)
			r.Post("/posts/{id}/like", s.handleToggleLike)
			r.Post("/posts/{id}/comments", s.handleAddComment)
		})
	})
	return r
}

func (s *Server) reportSuspicious(r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request",
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path,
		log.FieldClientIP, s.detector.ClientIP(r),
		log.FieldUserAgent, r.Header.Get("User-Agent"))
}

func (s *Server) rejectRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ClientIP(r))
	writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
}

func (s *Server) rejectToken(w http.ResponseWriter, r *http.Request, err error) {
	log.FromContext(r.Context()).InfoContext(r.Context(), "Rejected identity token",
		log.FieldError, err,
		log.FieldErrorType, log.ErrorTypeAuth)
	writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid identity token"})
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
