// Package pipeline orchestrates the full life of one package build:
// fetch the source, derive the version, run the recipe's build steps
// and optionally install the produced artifacts. Build history, metrics
// and notifications are recorded along the way when configured.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/pkgbuilder/internal/build"
	"git.home.luguber.info/inful/pkgbuilder/internal/config"
	"git.home.luguber.info/inful/pkgbuilder/internal/desktop"
	ferrors "git.home.luguber.info/inful/pkgbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pkgbuilder/internal/gitsrc"
	"git.home.luguber.info/inful/pkgbuilder/internal/history"
	"git.home.luguber.info/inful/pkgbuilder/internal/install"
	"git.home.luguber.info/inful/pkgbuilder/internal/logfields"
	"git.home.luguber.info/inful/pkgbuilder/internal/metrics"
	"git.home.luguber.info/inful/pkgbuilder/internal/notify"
	"git.home.luguber.info/inful/pkgbuilder/internal/recipe"
	"git.home.luguber.info/inful/pkgbuilder/internal/version"
	"git.home.luguber.info/inful/pkgbuilder/internal/workspace"
)

// Result summarizes one pipeline run.
type Result struct {
	BuildID     string
	Package     string
	Version     string
	Commit      string
	CheckoutDir string
	Steps       []build.StepResult
	Duration    time.Duration
	Manifest    *install.Manifest
}

// Pipeline runs recipes. A Pipeline owns a workspace for checkouts and is
// safe to reuse across builds, but runs builds one at a time.
type Pipeline struct {
	cfg      *config.Config
	ws       *workspace.Manager
	sources  *gitsrc.Client
	store    history.Store
	recorder metrics.Recorder
	pub      notify.Publisher
	keep     bool
}

// Option configures optional pipeline collaborators.
type Option func(*Pipeline)

// WithHistory records builds in the given store.
func WithHistory(store history.Store) Option {
	return func(p *Pipeline) { p.store = store }
}

// WithMetrics forwards durations and outcomes to the recorder.
func WithMetrics(rec metrics.Recorder) Option {
	return func(p *Pipeline) { p.recorder = rec }
}

// WithPublisher publishes build lifecycle events.
func WithPublisher(pub notify.Publisher) Option {
	return func(p *Pipeline) { p.pub = pub }
}

// WithKeepWorkspace keeps the checkout directory after Close.
func WithKeepWorkspace() Option {
	return func(p *Pipeline) { p.keep = true }
}

// New creates a pipeline using the configured workspace location.
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	var ws *workspace.Manager
	if cfg.Workspace.Persistent {
		ws = workspace.NewPersistentManager(cfg.Workspace.Dir, "src")
	} else {
		ws = workspace.NewManager(cfg.Workspace.Dir)
	}
	if err := ws.Create(); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	p := &Pipeline{
		cfg:      cfg,
		ws:       ws,
		sources:  gitsrc.NewClient(ws.GetPath(), cfg.Build.RetryPolicy()),
		recorder: metrics.NoopRecorder{},
		pub:      notify.NoopPublisher{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Close removes the ephemeral workspace. Persistent workspaces and
// pipelines created with WithKeepWorkspace are left in place.
func (p *Pipeline) Close() error {
	if p.keep || p.cfg.Workspace.Persistent {
		slog.Debug("Keeping workspace", logfields.Path(p.ws.GetPath()))
		return nil
	}
	return p.ws.Cleanup()
}

// Fetch clones or updates the recipe's source and describes its head.
func (p *Pipeline) Fetch(ctx context.Context, r *recipe.Recipe) (string, version.Description, error) {
	start := time.Now()
	checkout, err := p.sources.Update(ctx, r.Package.Name, r.Source)
	p.recorder.ObserveFetchDuration(r.Source.URL, time.Since(start), err == nil)
	p.recorder.IncFetchResult(err == nil)
	if err != nil {
		return "", version.Description{}, err
	}

	desc, err := gitsrc.Describe(checkout)
	if err != nil {
		return "", version.Description{}, err
	}
	return checkout, desc, nil
}

// DeriveVersion fetches the source and returns the derived version along
// with the checkout path.
func (p *Pipeline) DeriveVersion(ctx context.Context, r *recipe.Recipe) (string, string, error) {
	checkout, desc, err := p.Fetch(ctx, r)
	if err != nil {
		return "", "", err
	}
	ver, err := version.Derive(desc, r.Version)
	if err != nil {
		return "", "", err
	}
	return ver, checkout, nil
}

// Build fetches, derives the version and runs the recipe's build steps.
func (p *Pipeline) Build(ctx context.Context, r *recipe.Recipe) (*Result, error) {
	return p.run(ctx, r, false)
}

// Install builds the recipe, then installs its artifacts into the
// configured root and writes the install manifest.
func (p *Pipeline) Install(ctx context.Context, r *recipe.Recipe) (*Result, error) {
	return p.run(ctx, r, true)
}

func (p *Pipeline) run(ctx context.Context, r *recipe.Recipe, doInstall bool) (*Result, error) {
	pkg := r.Package.Name
	result := &Result{
		BuildID: uuid.New().String(),
		Package: pkg,
	}
	start := time.Now()

	slog.Info("Build starting",
		logfields.Package(pkg),
		logfields.BuildID(result.BuildID),
		logfields.Recipe(r.Path()))

	checkout, desc, err := p.Fetch(ctx, r)
	if err != nil {
		p.finish(ctx, result, time.Since(start), err)
		return nil, err
	}
	result.CheckoutDir = checkout
	result.Commit = desc.ShortHash

	ver, err := version.Derive(desc, r.Version)
	if err != nil {
		p.finish(ctx, result, time.Since(start), err)
		return nil, err
	}
	result.Version = ver

	p.beginHistory(ctx, result)
	p.appendEvent(ctx, result.BuildID, "fetch", fmt.Sprintf("checked out %s at %s", pkg, desc.ShortHash))

	runner := build.NewRunner(checkout)
	steps, err := runner.Run(ctx, r.Build)
	result.Steps = steps
	for _, step := range steps {
		p.recorder.ObserveStepDuration(pkg, step.Step, step.Duration)
		p.appendEvent(ctx, result.BuildID, "step", fmt.Sprintf("%s (exit %d)", step.Step, step.ExitCode))
	}
	if err != nil {
		p.finish(ctx, result, time.Since(start), err)
		return result, err
	}

	if doInstall {
		if genErr := writeDesktopFile(r, checkout); genErr != nil {
			p.finish(ctx, result, time.Since(start), genErr)
			return result, genErr
		}
		installer := install.NewInstaller(p.cfg.Install.Root)
		manifest, installErr := installer.Install(r, ver, checkout)
		if installErr != nil {
			p.finish(ctx, result, time.Since(start), installErr)
			return result, installErr
		}
		if writeErr := manifest.Write(p.cfg.Install.ManifestDir); writeErr != nil {
			p.finish(ctx, result, time.Since(start), writeErr)
			return result, writeErr
		}
		result.Manifest = manifest
		p.appendEvent(ctx, result.BuildID, "install",
			fmt.Sprintf("installed %d files under %s", len(manifest.Entries), p.cfg.Install.Root))
	}

	p.finish(ctx, result, time.Since(start), nil)
	return result, nil
}

// finish records outcome, metrics and notifications for a completed run.
func (p *Pipeline) finish(ctx context.Context, result *Result, elapsed time.Duration, buildErr error) {
	result.Duration = elapsed

	outcome := metrics.OutcomeSuccess
	historyOutcome := history.OutcomeSuccess
	if buildErr != nil {
		outcome = metrics.OutcomeFailed
		historyOutcome = history.OutcomeFailure
		if ctx.Err() != nil {
			outcome = metrics.OutcomeCanceled
		}
	}

	p.recorder.ObserveBuildDuration(result.Package, elapsed)
	p.recorder.IncBuildOutcome(result.Package, outcome)

	// A run that failed before the version was derived never reached
	// Begin, so there is no history row to finish.
	if p.store != nil && result.Version != "" {
		if err := p.store.Finish(ctx, result.BuildID, historyOutcome, buildErr); err != nil {
			slog.Warn("Failed to record build outcome",
				logfields.BuildID(result.BuildID),
				logfields.Error(err))
		}
	}

	event := &notify.BuildEvent{
		BuildID:    result.BuildID,
		Package:    result.Package,
		Version:    result.Version,
		Outcome:    string(outcome),
		DurationMS: elapsed.Milliseconds(),
	}
	if buildErr != nil {
		event.Error = buildErr.Error()
	}
	if err := p.pub.PublishBuildEvent(event); err != nil {
		slog.Warn("Failed to publish build event",
			logfields.BuildID(result.BuildID),
			logfields.Error(err))
	}

	if buildErr != nil {
		slog.Error("Build failed",
			logfields.Package(result.Package),
			logfields.BuildID(result.BuildID),
			logfields.DurationMS(float64(elapsed.Milliseconds())),
			logfields.Error(buildErr))
		return
	}
	slog.Info("Build finished",
		logfields.Package(result.Package),
		logfields.Version(result.Version),
		logfields.BuildID(result.BuildID),
		logfields.DurationMS(float64(elapsed.Milliseconds())))
}

func (p *Pipeline) beginHistory(ctx context.Context, result *Result) {
	if p.store == nil {
		return
	}
	err := p.store.Begin(ctx, result.BuildID, result.Package, result.Version, result.Commit)
	if err != nil {
		slog.Warn("Failed to record build start",
			logfields.BuildID(result.BuildID),
			logfields.Error(err))
	}
}

// writeDesktopFile renders the recipe's desktop section into the build tree
// at the desktop artifact's source path, so install picks it up like any
// other artifact. Recipes without a desktop section are left alone.
func writeDesktopFile(r *recipe.Recipe, buildDir string) error {
	if r.Desktop == nil {
		return nil
	}
	for _, artifact := range r.Artifacts {
		if artifact.Kind() != recipe.KindDesktop {
			continue
		}
		content := desktop.Generate(r.Desktop)
		if findings := desktop.Validate(content); desktop.HasErrors(findings) {
			for _, f := range findings {
				slog.Warn("Desktop entry finding",
					logfields.Package(r.Package.Name),
					slog.String("key", f.Key),
					slog.String("message", f.Message))
			}
			return ferrors.RecipeError("generated desktop entry is invalid").
				WithContext("package", r.Package.Name).Build()
		}

		path := filepath.Join(buildDir, filepath.FromSlash(artifact.Source))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create desktop file directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write desktop file: %w", err)
		}
		slog.Debug("Desktop entry generated", logfields.Path(path))
		return nil
	}
	slog.Debug("Recipe has a desktop section but no desktop artifact",
		logfields.Package(r.Package.Name))
	return nil
}

func (p *Pipeline) appendEvent(ctx context.Context, buildID, eventType, message string) {
	if p.store == nil {
		return
	}
	if err := p.store.Append(ctx, buildID, eventType, message); err != nil {
		slog.Warn("Failed to record build event",
			logfields.BuildID(buildID),
			logfields.Error(err))
	}
}
