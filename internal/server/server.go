package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/folioapp/folio/internal/config"
	"github.com/folioapp/folio/internal/handler"
	"github.com/folioapp/folio/internal/server/middleware"
	"github.com/folioapp/folio/internal/service"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	// Production sets the Secure attribute on the session cookie.
	Production bool
	// AuthRateLimit is requests per minute per IP and endpoint on /api/auth.
	AuthRateLimit int
	// PublicRateLimit is requests per minute per IP on the public API.
	// Zero disables it.
	PublicRateLimit int
	Version         string
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		ShutdownTimeout: 30 * time.Second,
		CORSOrigins:     []string{"*"},
		AuthRateLimit:   20,
		PublicRateLimit: 120,
		Version:         "dev",
	}
}

// Services bundles the auth services the routes are built on.
type Services struct {
	Auth  *service.AuthService
	Setup *service.SetupService
	Reset *service.ResetService
}

// Server is the top-level HTTP server. It owns the Chi router and the store.
type Server struct {
	cfg        Config
	router     chi.Router
	store      *config.Store
	svc        Services
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a new Server, wires up all routes and middleware, and returns
// it ready to listen. Call ListenAndServe to start accepting connections.
func New(cfg Config, store *config.Store, svc Services, logger *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		store:  store,
		svc:    svc,
		logger: logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// --- Global middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chimw.Compress(5))

	// --- Health checks (no auth required) ---
	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	r.Get("/openapi.json", handler.NewOpenAPIHandler(s.cfg.Version).ServeSpec)

	authenticate := middleware.Authenticate(s.svc.Auth)

	r.Route("/api", func(r chi.Router) {
		// Credential endpoints. Setup gates itself; only /me needs a session.
		r.Route("/auth", func(r chi.Router) {
			if s.cfg.AuthRateLimit > 0 {
				r.Use(middleware.RateLimitAuth(s.cfg.AuthRateLimit))
			}
			h := handler.NewAuthHandler(s.svc.Auth, s.svc.Setup, s.svc.Reset, s.cfg.Production, s.logger)

			r.Post("/setup", h.Setup)
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.Post("/request-reset", h.RequestReset)
			r.Post("/reset-password", h.ResetPassword)
			r.With(authenticate).Get("/me", h.Me)
		})

		// Content management, all behind the auth gate.
		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticate)
			h := handler.NewContentHandler(s.store, s.logger)

			r.Get("/stats", h.Stats)

			r.Get("/projects", h.ListProjects)
			r.Post("/projects", h.CreateProject)
			r.Get("/projects/{id}", h.GetProject)
			r.Put("/projects/{id}", h.UpdateProject)
			r.Delete("/projects/{id}", h.DeleteProject)

			r.Get("/categories", h.ListCategories)
			r.Post("/categories", h.CreateCategory)
			r.Put("/categories/{id}", h.UpdateCategory)
			r.Delete("/categories/{id}", h.DeleteCategory)

			r.Get("/skills", h.ListSkills)
			r.Post("/skills", h.CreateSkill)
			r.Get("/skills/{id}", h.GetSkill)
			r.Put("/skills/{id}", h.UpdateSkill)
			r.Delete("/skills/{id}", h.DeleteSkill)

			r.Get("/qualifications", h.ListQualifications)
			r.Post("/qualifications", h.CreateQualification)
			r.Get("/qualifications/{id}", h.GetQualification)
			r.Put("/qualifications/{id}", h.UpdateQualification)
			r.Delete("/qualifications/{id}", h.DeleteQualification)

			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.SaveProfile)
		})

		// Public site API, published content only.
		r.Group(func(r chi.Router) {
			if s.cfg.PublicRateLimit > 0 {
				r.Use(middleware.RateLimit(s.cfg.PublicRateLimit))
			}
			h := handler.NewPublicHandler(s.store, s.logger)

			r.Get("/projects", h.ListProjects)
			r.Get("/categories", h.ListCategories)
			r.Get("/skills", h.ListSkills)
			r.Get("/profile", h.GetProfile)
			r.Get("/qualifications", h.ListQualifications)
			r.Get("/qualifications/{id}", h.GetQualification)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	s.router = r
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{"code": code, "message": message},
	})
}

// handleHealthz is a liveness probe. Returns 200 if the process is running.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// handleReadyz is a readiness probe. Returns 200 when the store answers a
// ping, 503 otherwise.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK
	checks := map[string]string{}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("readiness check failed", "driver", s.store.Driver(), "error", err)
		checks["store"] = "unreachable"
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	setup, err := s.svc.Setup.IsComplete(ctx)
	switch {
	case err != nil:
		checks["setup"] = "unknown"
	case setup:
		checks["setup"] = "complete"
	default:
		checks["setup"] = "pending"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}

// ListenAndServe starts the HTTP server and blocks until a SIGINT or SIGTERM
// is received. It then performs a graceful shutdown, draining in-flight
// requests before closing the store.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr, "store", s.store.Driver(), "production", s.cfg.Production)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	if err := s.store.Close(); err != nil {
		s.logger.Warn("closing store", "error", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Router returns the underlying Chi router, useful for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
