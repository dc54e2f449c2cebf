package config

import (
	"time"

	ferrors "git.home.luguber.info/inful/pkgbuilder/internal/foundation/errors"
)

// Validate checks the configuration for inconsistencies after defaults are applied.
func (c *Config) Validate() error {
	if c.Build.MaxRetries < 0 {
		return ferrors.ConfigError("build.max_retries must not be negative").
			WithContext("max_retries", c.Build.MaxRetries).Build()
	}
	if NormalizeRetryBackoff(string(c.Build.RetryBackoff)) == "" {
		return ferrors.ConfigError("build.retry_backoff must be fixed, linear, or exponential").
			WithContext("retry_backoff", string(c.Build.RetryBackoff)).Build()
	}
	for _, d := range []struct{ name, raw string }{
		{"build.retry_initial_delay", c.Build.RetryInitialDelay},
		{"build.retry_max_delay", c.Build.RetryMaxDelay},
		{"daemon.quiet_window", c.Daemon.QuietWindow},
		{"daemon.max_delay", c.Daemon.MaxDelay},
	} {
		if _, err := time.ParseDuration(d.raw); err != nil {
			return ferrors.ConfigError(d.name + " is not a valid duration").
				WithContext("value", d.raw).WithCause(err).Build()
		}
	}
	if c.Daemon.RebuildInterval != "" {
		if _, err := time.ParseDuration(c.Daemon.RebuildInterval); err != nil {
			return ferrors.ConfigError("daemon.rebuild_interval is not a valid duration").
				WithContext("value", c.Daemon.RebuildInterval).WithCause(err).Build()
		}
	}
	if c.Notifications.Enabled && c.Notifications.URL == "" {
		return ferrors.ConfigError("notifications.url is required when notifications are enabled").Build()
	}
	return nil
}

// QuietWindowDuration returns the parsed debounce quiet window.
func (d DaemonConfig) QuietWindowDuration() time.Duration {
	dur, err := time.ParseDuration(d.QuietWindow)
	if err != nil || dur <= 0 {
		dur, _ = time.ParseDuration(DefaultQuietWindow)
	}
	return dur
}

// MaxDelayDuration returns the parsed debounce upper bound.
func (d DaemonConfig) MaxDelayDuration() time.Duration {
	dur, err := time.ParseDuration(d.MaxDelay)
	if err != nil || dur <= 0 {
		dur, _ = time.ParseDuration(DefaultMaxDelay)
	}
	return dur
}

// RebuildIntervalDuration returns the periodic rebuild interval, zero when disabled.
func (d DaemonConfig) RebuildIntervalDuration() time.Duration {
	if d.RebuildInterval == "" {
		return 0
	}
	dur, err := time.ParseDuration(d.RebuildInterval)
	if err != nil {
		return 0
	}
	return dur
}
