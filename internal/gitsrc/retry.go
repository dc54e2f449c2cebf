package gitsrc

import (
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/pkgbuilder/internal/logfields"
)

// withRetry wraps a remote operation with the configured retry policy.
// Permanent errors (auth, not-found, unsupported protocol) abort immediately.
func (c *Client) withRetry(op, pkg string, fn func() (string, error)) (string, error) {
	if c.policy.MaxRetries <= 0 {
		return fn()
	}

	var lastErr error
	for attempt := 0; attempt <= c.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			slog.Warn("Retrying git operation",
				slog.String("operation", op),
				logfields.Package(pkg),
				slog.Int("attempt", attempt))
		}
		path, err := fn()
		if err == nil {
			return path, nil
		}
		lastErr = err
		if isPermanentError(err) {
			slog.Error("Permanent git error",
				slog.String("operation", op),
				logfields.Package(pkg),
				logfields.Error(err))
			return "", err
		}
		if attempt == c.policy.MaxRetries {
			break
		}
		time.Sleep(c.policy.Delay(attempt + 1))
	}
	return "", fmt.Errorf("git %s failed after retries: %w", op, lastErr)
}
