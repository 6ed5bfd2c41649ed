package provider

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const (
	maxRetries    = 3
	baseDelay     = 2 * time.Second
	maxDelay      = 30 * time.Second
	jitterPercent = 30 // ±30% jitter
)

// ChatWithRetry calls p.Chat, retrying transient failures with
// exponential backoff. Permanent errors and context cancellation return
// immediately.
func ChatWithRetry(ctx context.Context, p Provider, req *ChatRequest, logger *log.Logger) (*ChatResponse, error) {
	if logger == nil {
		logger = log.Default()
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := retryDelay(attempt - 1)
			logger.Warn("retrying model call",
				"attempt", attempt, "max", maxRetries,
				"delay", delay.Round(time.Millisecond),
				"err", truncateError(lastErr))
			if err := sleepWithContext(ctx, delay); err != nil {
				return nil, err
			}
		}

		resp, err := p.Chat(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !isRetryableError(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("model call failed after %d retries: %w", maxRetries, lastErr)
}

// isRetryableError checks if an error is worth retrying (rate limit, server error, network).
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	// Context cancelled is NOT retryable
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	msg := err.Error()

	// Rate limit (429)
	if strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "rate_limit") {
		return true
	}
	// Anthropic overloaded (529)
	if strings.Contains(msg, "529") || strings.Contains(msg, "overloaded") {
		return true
	}
	// Server errors (500, 502, 503, 504)
	for _, code := range []string{"500", "502", "503", "504"} {
		if strings.Contains(msg, code) {
			return true
		}
	}
	// Network errors
	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "temporary failure") {
		return true
	}
	return false
}

// retryDelay returns the delay for attempt n (0-indexed) with jitter.
func retryDelay(attempt int) time.Duration {
	delay := baseDelay
	for range attempt {
		delay *= 2
	}
	if delay > maxDelay {
		delay = maxDelay
	}
	// Add jitter: ±jitterPercent%
	jitter := time.Duration(rand.IntN(int(delay)*jitterPercent*2/100)) - time.Duration(int(delay)*jitterPercent/100)
	return delay + jitter
}

// sleepWithContext sleeps for d, but returns early if ctx is cancelled.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func truncateError(err error) string {
	s := err.Error()
	if len(s) > 80 {
		return s[:80] + "..."
	}
	return s
}
