package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/cinelog/ticket-scanner/internal/common"
	"github.com/cinelog/ticket-scanner/internal/vision"
)

// providercheck probes every configured vision backend and reports
// reachability. Exit code 1 when no provider is usable.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	cfg := common.LoadConfig()
	if !cfg.HasAnyProvider() {
		logger.Error("no vision provider API key configured")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	registry := vision.NewRegistry(ctx, cfg.Providers, logger)
	if registry.Len() == 0 {
		logger.Error("no provider could be initialized")
		os.Exit(1)
	}

	results := registry.TestAll(ctx)
	anyUp := false
	for _, name := range registry.Names() {
		up := results[name]
		anyUp = anyUp || up
		logger.Info("provider status",
			"provider", name,
			"connected", up,
			"active", name == registry.ActiveName(),
		)
	}
	if !anyUp {
		logger.Error("all providers unreachable")
		os.Exit(1)
	}
}
