package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/eshaffer321/resale-ledger/internal/cli"
	"github.com/eshaffer321/resale-ledger/internal/infrastructure/config"
	"github.com/eshaffer321/resale-ledger/internal/infrastructure/logging"
)

func main() {
	flags := cli.ParseRecalcFlags()
	if err := flags.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg := config.LoadOrEnvWithPath(flags.ConfigPath)
	if flags.Verbose {
		cfg.Observability.Logging.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(cfg.Observability.Logging, "recalc")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.RunRecalc(ctx, cfg, flags, logger, os.Stdout); err != nil {
		logger.Error("Recalculation failed", "error", err)
		os.Exit(1)
	}
}
