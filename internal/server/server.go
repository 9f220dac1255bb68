// Package server provides the HTTP server and routing for the guild price
// board.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/titguild/guildboard/internal/database"
	"github.com/titguild/guildboard/internal/modules/export"
	"github.com/titguild/guildboard/internal/services"
)

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	DB        *database.DB
	Datasets  *services.DatasetService
	Refresh   *services.RefreshService
	Publisher *export.Publisher
	Port      int
	DevMode   bool
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger

	db        *database.DB
	datasets  *services.DatasetService
	refresh   *services.RefreshService
	publisher *export.Publisher
	startup   time.Time
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		db:        cfg.DB,
		datasets:  cfg.Datasets,
		refresh:   cfg.Refresh,
		publisher: cfg.Publisher,
		startup:   time.Now(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes registers all API routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.datasets, s.refresh, s.log)
	system := NewSystemHandlers(s.db, s.publisher, s.startup, s.log)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.HandleHealth)
		r.Get("/goods", handlers.HandleGoodsList)
		r.Get("/goods/{goodName}", handlers.HandleGoodDetail)
		r.Get("/companies", handlers.HandleCompaniesList)
		r.Get("/stats", handlers.HandleStats)

		r.Post("/refresh/sheet", handlers.HandleRefreshSheet)
		r.Post("/refresh/prices", handlers.HandleRefreshPrices)
		r.Post("/publish", handlers.HandlePublish)

		r.Get("/system/status", system.HandleStatus)
	})
}

// Router returns the chi router (used by tests)
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
