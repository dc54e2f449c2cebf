package config

const (
	// DefaultQuietWindow is the debounce quiet window for recipe changes in daemon mode.
	DefaultQuietWindow = "2s"
	// DefaultMaxDelay caps how long a burst of recipe changes can postpone a build.
	DefaultMaxDelay = "30s"
	// DefaultQueueSize bounds the daemon build queue.
	DefaultQueueSize = 16
	// DefaultMetricsListen is the daemon metrics listen address.
	DefaultMetricsListen = ":9143"
)

// applyDefaults fills unset fields after unmarshal.
func applyDefaults(cfg *Config) {
	if cfg.Recipes.Dir == "" {
		cfg.Recipes.Dir = "./recipes"
	}
	if cfg.Install.Root == "" {
		cfg.Install.Root = "/"
	}
	if cfg.Install.ManifestDir == "" {
		cfg.Install.ManifestDir = "./manifests"
	}
	if cfg.History.Path == "" {
		cfg.History.Path = "./pkgbuilder.db"
	}
	if cfg.Build.RetryBackoff == "" {
		cfg.Build.RetryBackoff = RetryBackoffLinear
	}
	if cfg.Build.RetryInitialDelay == "" {
		cfg.Build.RetryInitialDelay = "500ms"
	}
	if cfg.Build.RetryMaxDelay == "" {
		cfg.Build.RetryMaxDelay = "10s"
	}
	if cfg.Daemon.QuietWindow == "" {
		cfg.Daemon.QuietWindow = DefaultQuietWindow
	}
	if cfg.Daemon.MaxDelay == "" {
		cfg.Daemon.MaxDelay = DefaultMaxDelay
	}
	if cfg.Daemon.QueueSize <= 0 {
		cfg.Daemon.QueueSize = DefaultQueueSize
	}
	if cfg.Metrics.Listen == "" {
		cfg.Metrics.Listen = DefaultMetricsListen
	}
	if cfg.Notifications.Subject == "" {
		cfg.Notifications.Subject = "pkgbuilder.builds"
	}
}
