package config

import (
	"strings"
	"time"

	"git.home.luguber.info/inful/pkgbuilder/internal/retry"
)

// RetryBackoffMode enumerates supported backoff strategies for retries.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

// NormalizeRetryBackoff converts arbitrary user input (case-insensitive) into a typed mode, returning empty string for unknown.
func NormalizeRetryBackoff(raw string) RetryBackoffMode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(RetryBackoffFixed):
		return RetryBackoffFixed
	case string(RetryBackoffLinear):
		return RetryBackoffLinear
	case string(RetryBackoffExponential):
		return RetryBackoffExponential
	default:
		return ""
	}
}

// RetryPolicy builds a retry.Policy from the build config; zero/invalid
// values fall back to the policy defaults.
func (b BuildConfig) RetryPolicy() retry.Policy {
	initial, _ := time.ParseDuration(b.RetryInitialDelay)
	maxDelay, _ := time.ParseDuration(b.RetryMaxDelay)
	return retry.NewPolicy(retry.BackoffMode(NormalizeRetryBackoff(string(b.RetryBackoff))), initial, maxDelay, b.MaxRetries)
}
