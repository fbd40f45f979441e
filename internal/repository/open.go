package repository

import (
	"context"
	"log/slog"

	"github.com/cinelog/ticket-scanner/internal/common"
)

// Open picks the backend from configuration: a postgres DSN when present,
// else the embedded sqlite file.
func Open(ctx context.Context, cfg common.DatabaseConfig, log *slog.Logger) (OutcomeRepository, error) {
	if cfg.DSN != "" {
		return OpenPostgres(ctx, cfg, log)
	}
	return OpenSQLite(ctx, cfg.SQLitePath, log)
}
