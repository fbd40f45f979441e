package vision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/googleapi"
)

const (
	baseRetryDelay = 1000 * time.Millisecond
	maxRetryDelay  = 10000 * time.Millisecond
)

// httpStatusError carries the status of a non-2xx response from the raw-HTTP
// backends so the retry layer can classify it.
type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("api returned status %d: %s", e.StatusCode, e.Body)
}

// isTransient reports whether an error is worth retrying: network trouble,
// timeouts, rate limits and server-side 5xx. Bad input, auth failures and
// malformed responses are permanent.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var hse *httpStatusError
	if errors.As(err, &hse) {
		return retryableStatus(hse.StatusCode)
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return retryableStatus(gErr.Code)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"timeout", "connection", "network", "temporarily unavailable", "rate limit"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func retryableStatus(code int) bool {
	return code == 429 || code >= 500
}

// backoffDelay returns the wait before the next attempt: exponential from
// baseRetryDelay, capped at maxRetryDelay.
func backoffDelay(attempt int) time.Duration {
	d := baseRetryDelay << attempt
	if d > maxRetryDelay || d <= 0 {
		d = maxRetryDelay
	}
	return d
}

// withRetries runs fn up to maxRetries times, sleeping between attempts only
// when the failure is transient. A permanent error returns immediately.
func withRetries(ctx context.Context, log *slog.Logger, provider string, maxRetries int, fn func(ctx context.Context) (string, error)) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !isTransient(err) {
			log.Warn("vision.call.failed", "provider", provider, "attempt", attempt, "transient", false, "error", err)
			return "", err
		}
		log.Warn("vision.call.failed", "provider", provider, "attempt", attempt, "transient", true, "error", err)
		if attempt == maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoffDelay(attempt)):
		}
	}
	return "", fmt.Errorf("all %d attempts failed: %w", maxRetries, lastErr)
}
