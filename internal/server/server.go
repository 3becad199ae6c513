package server

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"shop-api/internal/auth"
	"shop-api/internal/config"
	"shop-api/internal/database"
	applogger "shop-api/internal/logger"
	custommiddleware "shop-api/internal/middleware"
	"shop-api/internal/repository"
	"shop-api/internal/service"
	"shop-api/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps are the collaborators built by the composition root. Closers are
// released in order by Close.
type Deps struct {
	Products    repository.ProductRepository
	Users       repository.UserRepository
	Store       database.HealthChecker
	Revocations auth.RevocationStore
	Closers     []io.Closer
}

type Server struct {
	*http.Server
	config  *config.Config
	logger  *zap.Logger
	closers []io.Closer
}

func NewServer(cfg *config.Config, logger *zap.Logger, deps Deps) *Server {
	if deps.Revocations == nil {
		deps.Revocations = auth.NoopRevocationStore{}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := custommiddleware.NewHTTPMetrics(registry)

	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, !cfg.Server.IsProduction()))
	router.Use(metrics.Handler)

	router.NotFound(custommiddleware.NotFoundHandler(logger))
	router.MethodNotAllowed(custommiddleware.MethodNotAllowedHandler)

	router.Get("/", indexHandler(cfg.Server.StaticDir, logger))
	router.Get("/health", healthHandler(deps.Store))
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Initialize services
	tokens := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.TokenTTL())
	productService := service.NewProductService(deps.Products)
	userService := service.NewUserService(deps.Users, tokens, deps.Revocations)

	// Initialize handlers
	productHandler := transport.NewProductHandler(productService, applogger.Named(logger, "product"))
	userHandler := transport.NewUserHandler(userService, applogger.Named(logger, "user"), cfg.Server.IsProduction())

	// Create auth middleware
	authMiddleware := custommiddleware.AuthMiddleware(tokens, deps.Revocations, applogger.Named(logger, "auth"))

	// Register routes
	productHandler.RegisterRoutes(router)
	userHandler.RegisterRoutes(router, authMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:  cfg,
		logger:  logger,
		closers: deps.Closers,
	}

	return server
}

// healthHandler reports "ok" with the store's own status, or 503 when the
// store is down
func healthHandler(store database.HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{"status": "ok"}
		status := http.StatusOK

		if store != nil {
			health := store.Health(r.Context())
			body["database"] = health
			if health["status"] != "up" {
				body["status"] = "degraded"
				status = http.StatusServiceUnavailable
			}
		}

		custommiddleware.RespondWithJSON(w, status, body)
	}
}

// indexHandler serves index.html from the static directory
func indexHandler(staticDir string, logger *zap.Logger) http.HandlerFunc {
	notFound := custommiddleware.NotFoundHandler(logger)
	index := filepath.Join(staticDir, "index.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := os.Stat(index); err != nil {
			notFound(w, r)
			return
		}
		http.ServeFile(w, r, index)
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			s.logger.Error("Failed to close resource", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
