package vision

import (
	"context"
	"time"

	"github.com/cinelog/ticket-scanner/internal/ticket"
)

// Provider is the capability contract every vision backend implements.
// ExtractTicketData never propagates errors past this seam: unrecoverable
// failures come back as a failed ExtractionResult with a descriptive
// message, so callers can treat every provider call as non-throwing.
type Provider interface {
	Name() string
	ExtractTicketData(ctx context.Context, imagePath string) ticket.ExtractionResult
	TestConnection(ctx context.Context) bool
}

// Descriptor is a named, configured backend. Constructed once at process
// start from environment configuration and immutable thereafter.
type Descriptor struct {
	Name       string
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

func (d Descriptor) withDefaults() Descriptor {
	if d.Timeout <= 0 {
		d.Timeout = 45 * time.Second
	}
	if d.MaxRetries <= 0 {
		d.MaxRetries = 3
	}
	return d
}
