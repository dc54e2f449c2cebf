package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		Workspace: WorkspaceConfig{
			Dir:        "./work",
			Persistent: true,
		},
		Recipes: RecipesConfig{
			Dir: "./recipes",
		},
		Install: InstallConfig{
			Root:        "/",
			ManifestDir: "./manifests",
		},
		History: HistoryConfig{
			Path: "./pkgbuilder.db",
		},
		Build: BuildConfig{
			MaxRetries:        2,
			RetryBackoff:      RetryBackoffLinear,
			RetryInitialDelay: "500ms",
			RetryMaxDelay:     "10s",
		},
		Daemon: DaemonConfig{
			RebuildInterval: "6h",
			QuietWindow:     DefaultQuietWindow,
			MaxDelay:        DefaultMaxDelay,
			QueueSize:       DefaultQueueSize,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  DefaultMetricsListen,
		},
		Notifications: NotificationsConfig{
			Enabled: false,
			URL:     "nats://localhost:4222",
			Subject: "pkgbuilder.builds",
		},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
