package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pkgbuilder/internal/config"
	"git.home.luguber.info/inful/pkgbuilder/internal/pipeline"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build     BuildCmd     `cmd:"" help:"Fetch a recipe's source and run its build steps"`
	Install   InstallCmd   `cmd:"" help:"Build a recipe and install its artifacts"`
	Uninstall UninstallCmd `cmd:"" help:"Remove a package's installed files using its manifest"`
	Ver       VersionCmd   `cmd:"" name:"version" help:"Print the version a recipe would build"`
	Lint      LintCmd      `cmd:"" help:"Check recipes and their desktop entries for problems"`
	Changelog ChangelogCmd `cmd:"" help:"Print release notes for the version a recipe would build"`
	History   HistoryCmd   `cmd:"" help:"Show recent builds from the history database"`
	Init      InitCmd      `cmd:"" help:"Write an example configuration or recipe file"`
	Daemon    DaemonCmd    `cmd:"" help:"Run continuous rebuild mode"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig loads the configured file for subcommands.
func loadConfig(root *CLI) (*config.Config, error) {
	return config.Load(root.Config)
}

// newPipeline builds a pipeline from config plus per-command options.
func newPipeline(cfg *config.Config, opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	return pipeline.New(cfg, opts...)
}
