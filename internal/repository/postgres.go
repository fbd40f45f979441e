package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cinelog/ticket-scanner/internal/common"
	"github.com/cinelog/ticket-scanner/internal/ticket"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS scan_outcomes (
	id          UUID PRIMARY KEY,
	user_id     TEXT NOT NULL,
	image_path  TEXT NOT NULL,
	provider    TEXT NOT NULL,
	raw_payload TEXT NOT NULL DEFAULT '',
	fields      JSONB NOT NULL,
	sparse      BOOLEAN NOT NULL DEFAULT FALSE,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scan_outcomes_user ON scan_outcomes (user_id, created_at DESC);
`

// PostgresRepository stores outcomes in postgres through a pgx pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// OpenPostgres creates the pool, applies the schema, and pings.
func OpenPostgres(ctx context.Context, cfg common.DatabaseConfig, log *slog.Logger) (*PostgresRepository, error) {
	log.Info("db.connect.start", "backend", "postgres")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "ticket-scanner"

	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	log.Info("db.connect.ok", "backend", "postgres")
	return &PostgresRepository{pool: pool, log: log}, nil
}

func (r *PostgresRepository) Save(ctx context.Context, o ticket.ScanOutcome) error {
	fieldsJSON, err := json.Marshal(o.Fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO scan_outcomes (id, user_id, image_path, provider, raw_payload, fields, sparse, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		o.ID, o.UserID, o.ImagePath, o.Provider, o.RawPayload, fieldsJSON, o.Sparse, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert outcome: %w", err)
	}
	r.log.Debug("db.outcome.saved", "id", o.ID, "user_id", o.UserID)
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (ticket.ScanOutcome, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, image_path, provider, raw_payload, fields, sparse, created_at
		FROM scan_outcomes WHERE id = $1`, id)
	o, err := scanOutcomeRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return ticket.ScanOutcome{}, common.NewAppError("OUTCOME_NOT_FOUND", "scan outcome "+id, common.ErrNotFound)
	}
	return o, err
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit int) ([]ticket.ScanOutcome, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, image_path, provider, raw_payload, fields, sparse, created_at
		FROM scan_outcomes WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var out []ticket.ScanOutcome
	for rows.Next() {
		o, err := scanOutcomeRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOutcomeRow(row rowScanner) (ticket.ScanOutcome, error) {
	var o ticket.ScanOutcome
	var fieldsJSON []byte
	if err := row.Scan(&o.ID, &o.UserID, &o.ImagePath, &o.Provider, &o.RawPayload, &fieldsJSON, &o.Sparse, &o.CreatedAt); err != nil {
		return ticket.ScanOutcome{}, err
	}
	if err := json.Unmarshal(fieldsJSON, &o.Fields); err != nil {
		return ticket.ScanOutcome{}, fmt.Errorf("decode fields: %w", err)
	}
	return o, nil
}
