package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/cinelog/ticket-scanner/internal/common"
	"github.com/cinelog/ticket-scanner/internal/export"
	"github.com/cinelog/ticket-scanner/internal/repository"
)

// export-history writes a user's scan history to an XLSX workbook.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	var (
		userID = flag.String("user", "", "user identifier (required)")
		out    = flag.String("out", "scan-history.xlsx", "output file path")
		limit  = flag.Int("limit", 0, "max rows (0 = repository default)")
	)
	flag.Parse()

	if *userID == "" {
		logger.Error("usage", "cmd", "export-history -user <id> [-out file.xlsx] [-limit n]")
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	repo, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("open outcome store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := repo.Close(); cerr != nil {
			logger.Error("close outcome store", "error", cerr)
		}
	}()

	svc := export.NewService(repo, logger)
	start := time.Now()
	data, err := svc.ExportHistoryXLSX(ctx, *userID, *limit)
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		logger.Error("write workbook", "path", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("export OK", "path", *out, "bytes", len(data), "duration_ms", time.Since(start).Milliseconds())
}
