package vision

import (
	"context"
	"log/slog"
	"time"

	"github.com/cinelog/ticket-scanner/internal/ticket"
)

// callFunc is one round trip to a backend: takes the encoded image and the
// prompt, returns the raw text answer.
type callFunc func(ctx context.Context, img encodedImage, prompt string) (string, error)

// extractTicket is the flow shared by every provider: encode, call with
// retries, parse. Encoding failures are bad input and are never retried.
// The function never returns an error; failures become a failed
// ExtractionResult so provider callers stay non-throwing.
func extractTicket(ctx context.Context, log *slog.Logger, d Descriptor, imagePath string, call callFunc) ticket.ExtractionResult {
	start := time.Now()
	log.Info("vision.extract.start", "provider", d.Name, "model", d.Model, "image", imagePath)

	img, err := encodeImage(imagePath)
	if err != nil {
		log.Error("vision.extract.encode_failed", "provider", d.Name, "error", err)
		return ticket.Failure("", "encode image: "+err.Error())
	}

	raw, err := withRetries(ctx, log, d.Name, d.MaxRetries, func(ctx context.Context) (string, error) {
		callCtx, cancel := context.WithTimeout(ctx, d.Timeout)
		defer cancel()
		return call(callCtx, img, buildTicketPrompt())
	})
	if err != nil {
		log.Error("vision.extract.call_failed", "provider", d.Name, "elapsed_ms", time.Since(start).Milliseconds(), "error", err)
		return ticket.Failure("", d.Name+" call failed: "+err.Error())
	}

	fields, err := ParseTicketJSON(log, raw)
	if err != nil {
		log.Error("vision.extract.parse_failed", "provider", d.Name, "error", err)
		return ticket.Failure(raw, "parse response: "+err.Error())
	}

	log.Info("vision.extract.done",
		"provider", d.Name,
		"elapsed_ms", time.Since(start).Milliseconds(),
		"populated", fields.CountPopulated(),
	)
	return ticket.ExtractionResult{Success: true, Fields: fields, RawResponse: raw}
}
