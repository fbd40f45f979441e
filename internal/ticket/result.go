package ticket

import (
	"time"

	"github.com/google/uuid"
)

// ExtractionResult wraps Fields with the outcome of one provider call. A
// failed extraction always carries the all-null template, never partially
// populated garbage; RawResponse is preserved for audit and debugging.
type ExtractionResult struct {
	Success     bool   `json:"success"`
	Fields      Fields `json:"fields"`
	RawResponse string `json:"rawResponse,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Failure builds a failed result with the all-null scaffolding.
func Failure(raw, msg string) ExtractionResult {
	return ExtractionResult{
		Success:     false,
		Fields:      EmptyFields(),
		RawResponse: raw,
		Error:       msg,
	}
}

// ScanOutcome is the persisted-shape record composed by the orchestrator.
// The caller decides if and when to store it.
type ScanOutcome struct {
	ID         uuid.UUID `json:"id"`
	UserID     string    `json:"userId"`
	ImagePath  string    `json:"imagePath"`
	Provider   string    `json:"provider"`
	RawPayload string    `json:"rawPayload,omitempty"`
	Fields     Fields    `json:"fields"`
	// Sparse marks a scan that extracted too few fields to trust; the data
	// is returned anyway so the user can complete it manually.
	Sparse    bool      `json:"sparse"`
	CreatedAt time.Time `json:"createdAt"`
}
