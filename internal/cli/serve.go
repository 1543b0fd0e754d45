package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/resale-ledger/internal/api"
	"github.com/eshaffer321/resale-ledger/internal/application/recalc"
	"github.com/eshaffer321/resale-ledger/internal/application/service"
	"github.com/eshaffer321/resale-ledger/internal/infrastructure/config"
	"github.com/eshaffer321/resale-ledger/internal/infrastructure/logging"
)

// RunServe runs the API server until SIGINT or SIGTERM.
func RunServe(cfg *config.Config, flags *ServeFlags) error {
	// Set up logging
	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "api")

	backends, err := OpenBackends(context.Background(), cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = backends.Close() }()

	recalcService := recalc.NewService(backends.Store, backends.Locker, logger)
	inventoryService := service.NewInventoryService(backends.Store, recalcService, logger)

	// Create API config
	apiCfg := api.Config{
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}
	if flags.Port != 0 {
		apiCfg.Port = flags.Port
	}

	gin.SetMode(gin.ReleaseMode)
	server := api.NewServer(apiCfg, inventoryService, recalcService, logger)

	// Handle graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("received shutdown signal")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown error", slog.Any("error", err))
		}
		close(done)
	}()

	// Start server (blocks until shutdown)
	if err := server.Start(); err != nil {
		return err
	}

	<-done
	logger.Info("server stopped")
	return nil
}
