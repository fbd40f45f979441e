package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/cinelog/ticket-scanner/internal/catalog"
	"github.com/cinelog/ticket-scanner/internal/common"
	"github.com/cinelog/ticket-scanner/internal/fields"
	"github.com/cinelog/ticket-scanner/internal/ocr"
	"github.com/cinelog/ticket-scanner/internal/repository"
	"github.com/cinelog/ticket-scanner/internal/scan"
	"github.com/cinelog/ticket-scanner/internal/scancache"
	"github.com/cinelog/ticket-scanner/internal/vision"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	var (
		imagePath    = flag.String("image", "", "path to the ticket image (required)")
		userID       = flag.String("user", "cli", "user identifier recorded on the outcome")
		providerName = flag.String("provider", "", "vision provider to use (default: active)")
		legacy       = flag.Bool("legacy", false, "use the deterministic OCR pipeline instead of a vision provider")
		noStore      = flag.Bool("no-store", false, "skip persisting the outcome")
	)
	flag.Parse()

	if *imagePath == "" {
		logger.Error("usage", "cmd", "ticket-scan -image <path> [-user id] [-provider name] [-legacy]")
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	if !*legacy {
		if err := cfg.Validate(); err != nil {
			logger.Error("configuration invalid", "error", err)
			os.Exit(1)
		}
	}

	catalogClient := catalog.NewClient(cfg.Catalog, logger)
	var matcher *catalog.Matcher
	if catalogClient.Enabled() {
		matcher = catalog.NewMatcher(catalogClient, logger)
	}

	var repo repository.OutcomeRepository
	if !*noStore {
		var err error
		repo, err = repository.Open(ctx, cfg.Database, logger)
		if err != nil {
			logger.Error("open outcome store", "error", err)
			os.Exit(1)
		}
		defer func() {
			if cerr := repo.Close(); cerr != nil {
				logger.Error("close outcome store", "error", cerr)
			}
		}()
	}

	var cache *scancache.Cache
	if !*noStore {
		var err error
		cache, err = scancache.Open(cfg.Cache.Path, logger)
		if err != nil {
			logger.Warn("open scan cache", "error", err)
		} else {
			defer cache.Close()
		}
	}

	registry := vision.NewRegistry(ctx, cfg.Providers, logger)
	titleExtractor := fields.NewTitleExtractor(scan.TitleValidatorAdapter{Matcher: matcher}, logger)
	parser := fields.NewTicketParser(ocr.NewExtractor(cfg.OCR, logger), titleExtractor, logger)
	svc := scan.NewService(registry, matcher, parser, repo, cache, logger)

	start := time.Now()
	var result string
	var err error
	if *legacy {
		o, serr := svc.ScanLegacy(ctx, *userID, *imagePath)
		err = serr
		result = scan.Describe(o)
	} else {
		o, serr := svc.Scan(ctx, *userID, *imagePath, *providerName)
		err = serr
		result = scan.Describe(o)
	}

	if err != nil {
		logger.Error("scan failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}
	logger.Info("scan OK", "result", result, "duration_ms", time.Since(start).Milliseconds())
}
