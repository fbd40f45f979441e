package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/cinelog/ticket-scanner/internal/common"
	"github.com/cinelog/ticket-scanner/internal/ticket"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS scan_outcomes (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	image_path  TEXT NOT NULL,
	provider    TEXT NOT NULL,
	raw_payload TEXT NOT NULL DEFAULT '',
	fields      TEXT NOT NULL,
	sparse      INTEGER NOT NULL DEFAULT 0,
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scan_outcomes_user ON scan_outcomes (user_id, created_at DESC);
`

// SQLiteRepository is the embedded, zero-infrastructure outcome store used
// when no postgres DSN is configured.
type SQLiteRepository struct {
	db  *sql.DB
	log *slog.Logger
}

func OpenSQLite(ctx context.Context, path string, log *slog.Logger) (*SQLiteRepository, error) {
	log.Info("db.connect.start", "backend", "sqlite", "path", path)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// modernc sqlite serializes writes itself; one connection avoids
	// SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	log.Info("db.connect.ok", "backend", "sqlite")
	return &SQLiteRepository{db: db, log: log}, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, o ticket.ScanOutcome) error {
	fieldsJSON, err := json.Marshal(o.Fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO scan_outcomes (id, user_id, image_path, provider, raw_payload, fields, sparse, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID.String(), o.UserID, o.ImagePath, o.Provider, o.RawPayload, string(fieldsJSON), boolToInt(o.Sparse), o.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert outcome: %w", err)
	}
	r.log.Debug("db.outcome.saved", "id", o.ID, "user_id", o.UserID)
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (ticket.ScanOutcome, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, image_path, provider, raw_payload, fields, sparse, created_at
		FROM scan_outcomes WHERE id = ?`, id)
	o, err := scanSQLiteRow(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return ticket.ScanOutcome{}, common.NewAppError("OUTCOME_NOT_FOUND", "scan outcome "+id, common.ErrNotFound)
	}
	return o, err
}

func (r *SQLiteRepository) ListByUser(ctx context.Context, userID string, limit int) ([]ticket.ScanOutcome, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, image_path, provider, raw_payload, fields, sparse, created_at
		FROM scan_outcomes WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var out []ticket.ScanOutcome
	for rows.Next() {
		o, err := scanSQLiteRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func scanSQLiteRow(scan func(dest ...any) error) (ticket.ScanOutcome, error) {
	var o ticket.ScanOutcome
	var id, fieldsJSON, createdAt string
	var sparse int
	if err := scan(&id, &o.UserID, &o.ImagePath, &o.Provider, &o.RawPayload, &fieldsJSON, &sparse, &createdAt); err != nil {
		return ticket.ScanOutcome{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return ticket.ScanOutcome{}, fmt.Errorf("parse outcome id: %w", err)
	}
	o.ID = parsed
	o.Sparse = sparse != 0
	if o.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return ticket.ScanOutcome{}, fmt.Errorf("parse created_at: %w", err)
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &o.Fields); err != nil {
		return ticket.ScanOutcome{}, fmt.Errorf("decode fields: %w", err)
	}
	return o, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
