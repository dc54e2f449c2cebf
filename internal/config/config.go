package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the tool configuration.
type Config struct {
	Workspace     WorkspaceConfig     `yaml:"workspace"`
	Recipes       RecipesConfig       `yaml:"recipes"`
	Install       InstallConfig       `yaml:"install"`
	History       HistoryConfig       `yaml:"history"`
	Build         BuildConfig         `yaml:"build"`
	Daemon        DaemonConfig        `yaml:"daemon"`
	Metrics       MetricsConfig       `yaml:"metrics"`
	Notifications NotificationsConfig `yaml:"notifications"`
}

// WorkspaceConfig controls where sources are checked out.
type WorkspaceConfig struct {
	Dir        string `yaml:"dir,omitempty"`
	Persistent bool   `yaml:"persistent"` // Keep checkouts between builds for incremental updates
}

// RecipesConfig locates recipe files.
type RecipesConfig struct {
	Dir string `yaml:"dir"`
}

// InstallConfig controls artifact installation.
type InstallConfig struct {
	Root        string `yaml:"root"`         // Destination root, defaults to "/"
	ManifestDir string `yaml:"manifest_dir"` // Where install manifests are written
}

// HistoryConfig locates the build history database.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// BuildConfig holds retry settings applied to transient source-fetch failures.
// Build steps themselves are never retried; a failing step aborts the run
// with the invoked tool's exit status.
type BuildConfig struct {
	MaxRetries        int              `yaml:"max_retries"`
	RetryBackoff      RetryBackoffMode `yaml:"retry_backoff,omitempty"`
	RetryInitialDelay string           `yaml:"retry_initial_delay,omitempty"`
	RetryMaxDelay     string           `yaml:"retry_max_delay,omitempty"`
}

// DaemonConfig controls continuous rebuild mode.
type DaemonConfig struct {
	RebuildInterval string `yaml:"rebuild_interval,omitempty"` // Periodic full rebuild, empty disables
	QuietWindow     string `yaml:"quiet_window,omitempty"`     // Debounce quiet window for recipe changes
	MaxDelay        string `yaml:"max_delay,omitempty"`        // Debounce upper bound
	QueueSize       int    `yaml:"queue_size,omitempty"`
}

// MetricsConfig controls the prometheus endpoint in daemon mode.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen,omitempty"`
}

// NotificationsConfig controls NATS build-event publishing.
type NotificationsConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	if err := loadEnvFile(); err != nil {
		// Don't fail if .env doesn't exist, just note it
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
