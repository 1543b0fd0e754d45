package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/resale-ledger/internal/api/handlers"
	"github.com/eshaffer321/resale-ledger/internal/api/middleware"
	"github.com/eshaffer321/resale-ledger/internal/application/service"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
	}
}

// Server is the HTTP API server.
type Server struct {
	config     Config
	router     *gin.Engine
	httpServer *http.Server
	logger     *slog.Logger
	inventory  *service.InventoryService
	allocator  handlers.Allocator
}

// NewServer creates a new API server.
func NewServer(cfg Config, inv *service.InventoryService, alloc handlers.Allocator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:    cfg,
		router:    gin.New(),
		logger:    logger,
		inventory: inv,
		allocator: alloc,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = s.config.AllowedOrigins
	s.router.Use(middleware.CORS(cors))

	s.router.Use(middleware.Logging(s.logger, "/health"))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	s.router.GET("/health", handlers.Health)

	api := s.router.Group("/api")

	sessions := handlers.NewSessionsHandler(s.inventory)
	storePurchases := handlers.NewStorePurchasesHandler(s.inventory)
	items := handlers.NewItemsHandler(s.inventory)
	allocation := handlers.NewAllocationHandler(s.allocator)

	// Sessions
	api.GET("/sessions", sessions.List)
	api.POST("/sessions", sessions.Create)
	api.GET("/sessions/:id", sessions.Get)
	api.PUT("/sessions/:id", sessions.Update)
	api.DELETE("/sessions/:id", sessions.Delete)
	api.POST("/sessions/:id/recalculate", allocation.Recalculate)
	api.GET("/sessions/:id/allocation", allocation.Preview)
	api.POST("/sessions/:id/store-purchases", storePurchases.Create)

	// Store purchases
	api.GET("/store-purchases/:id", storePurchases.Get)
	api.PUT("/store-purchases/:id", storePurchases.Update)
	api.DELETE("/store-purchases/:id", storePurchases.Delete)
	api.POST("/store-purchases/:id/items", items.Create)
	api.POST("/store-purchases/:id/items/bulk", items.BulkCreate)

	// Items
	api.GET("/items/:id", items.Get)
	api.PUT("/items/:id", items.Update)
	api.POST("/items/:id/sell", items.Sell)
	api.DELETE("/items/:id", items.Delete)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Router returns the gin engine for testing.
func (s *Server) Router() http.Handler {
	return s.router
}
