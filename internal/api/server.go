package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"careercast/internal/api/health"
	"careercast/internal/inference"
	"careercast/internal/metrics"
	authservice "careercast/internal/services/auth"
	historyservice "careercast/internal/services/history"
	"careercast/pkg/auth"
	"careercast/pkg/errors"
	"careercast/pkg/logger"
)

// ServerConfig contains configuration for HTTP server
type ServerConfig struct {
	Port        int
	ServiceName string
	Version     string
}

// Server wraps HTTP server with lifecycle management
type Server struct {
	httpServer *http.Server
	log        *logger.Logger
}

// NewServer creates and configures HTTP server with all routes
func NewServer(
	cfg ServerConfig,
	handlers *Handlers,
	healthHandler *health.Handler,
	jwtService *auth.JWTService,
	log *logger.Logger,
) *Server {
	mux := http.NewServeMux()

	// Health check endpoints (Kubernetes probes)
	mux.HandleFunc("/health", healthHandler.HandleHealth)
	mux.HandleFunc("/ready", healthHandler.HandleReadiness)
	mux.HandleFunc("/live", healthHandler.HandleLiveness)

	// Prometheus metrics endpoint
	mux.Handle("/metrics", metrics.Handler())

	// Public API
	mux.HandleFunc("POST /api/signup", handlers.HandleSignup)
	mux.HandleFunc("POST /api/login", handlers.HandleLogin)

	// Prediction accepts anonymous and authenticated callers alike; the
	// middleware attaches claims when a valid token is present but never
	// rejects the request.
	mux.Handle("POST /api/predict", optionalAuth(jwtService, http.HandlerFunc(handlers.HandlePredict)))

	// Authenticated API
	mux.Handle("GET /api/history", requireAuth(jwtService, http.HandlerFunc(handlers.HandleHistory)))

	// Admin API
	mux.Handle("GET /api/admin/predictions", requireAdmin(jwtService, http.HandlerFunc(handlers.HandleAdminPredictions)))
	mux.Handle("GET /api/admin/export.csv", requireAdmin(jwtService, http.HandlerFunc(handlers.HandleAdminExportCSV)))

	// Root endpoint (service info)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"service":"%s","version":"%s","status":"running"}`,
			cfg.ServiceName, cfg.Version)
	})

	port := 8080
	if cfg.Port > 0 {
		port = cfg.Port
	}

	log.Infof("HTTP server configured on port %d", port)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      requestLogging(log, mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		log:        log,
	}
}

// Handlers bundles the request handlers over the application services.
type Handlers struct {
	auth      *authservice.Service
	history   *historyservice.Service
	predictor *inference.Executor
	log       *logger.Logger
}

// NewHandlers creates the handler set
func NewHandlers(
	authSvc *authservice.Service,
	historySvc *historyservice.Service,
	predictor *inference.Executor,
) *Handlers {
	return &Handlers{
		auth:      authSvc,
		history:   historySvc,
		predictor: predictor,
		log:       logger.Get().With("component", "api"),
	}
}

// Start begins listening for HTTP requests
// Blocks until server is stopped or encounters an error
func (s *Server) Start() error {
	s.log.Infof("Starting HTTP server on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "http server failed")
	}

	return nil
}

// Shutdown gracefully stops the HTTP server
// Waits for active connections to complete within timeout
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Stopping HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "http server shutdown failed")
	}

	s.log.Info("✓ HTTP server stopped")
	return nil
}
