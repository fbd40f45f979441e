package repository

import (
	"context"

	"github.com/cinelog/ticket-scanner/internal/ticket"
)

// OutcomeRepository stores scan outcomes. Saving is explicit: the
// orchestrator composes the outcome, the caller decides when it persists.
type OutcomeRepository interface {
	Save(ctx context.Context, outcome ticket.ScanOutcome) error
	GetByID(ctx context.Context, id string) (ticket.ScanOutcome, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]ticket.ScanOutcome, error)
	Close() error
}
