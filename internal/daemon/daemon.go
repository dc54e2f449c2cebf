// Package daemon implements continuous rebuild mode: recipe changes and a
// periodic schedule feed a single build queue, with optional prometheus
// metrics and NATS build notifications.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/pkgbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/pkgbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pkgbuilder/internal/history"
	"git.home.luguber.info/inful/pkgbuilder/internal/logfields"
	"git.home.luguber.info/inful/pkgbuilder/internal/metrics"
	"git.home.luguber.info/inful/pkgbuilder/internal/notify"
	"git.home.luguber.info/inful/pkgbuilder/internal/pipeline"
	"git.home.luguber.info/inful/pkgbuilder/internal/recipe"
)

// stopTimeout bounds graceful shutdown of the metrics server and scheduler.
const stopTimeout = 10 * time.Second

// Daemon runs the continuous rebuild loop.
type Daemon struct {
	cfg       *config.Config
	pipe      *pipeline.Pipeline
	store     history.Store
	pub       notify.Publisher
	recorder  metrics.Recorder
	registry  *prom.Registry
	queue     *BuildQueue
	debouncer *Debouncer
	watcher   *RecipeWatcher
	scheduler *Scheduler
}

// New wires up a daemon from configuration.
func New(cfg *config.Config) (*Daemon, error) {
	d := &Daemon{
		cfg:      cfg,
		pub:      notify.NoopPublisher{},
		recorder: metrics.NoopRecorder{},
	}

	store, err := history.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}
	d.store = store

	if cfg.Metrics.Enabled {
		d.registry = prom.NewRegistry()
		d.recorder = metrics.NewPrometheusRecorder(d.registry)
	}

	if cfg.Notifications.Enabled {
		pub, pubErr := notify.NewNATSPublisher(&cfg.Notifications)
		if pubErr != nil {
			_ = store.Close()
			return nil, pubErr
		}
		d.pub = pub
	}

	pipe, err := pipeline.New(cfg,
		pipeline.WithHistory(store),
		pipeline.WithMetrics(d.recorder),
		pipeline.WithPublisher(d.pub),
	)
	if err != nil {
		d.pub.Close()
		_ = store.Close()
		return nil, err
	}
	d.pipe = pipe

	d.queue = NewBuildQueue(cfg.Daemon.QueueSize, d, d.recorder)

	debouncer, err := NewDebouncer(DebouncerConfig{
		QuietWindow: cfg.Daemon.QuietWindowDuration(),
		MaxDelay:    cfg.Daemon.MaxDelayDuration(),
	}, d.onRecipeChanged)
	if err != nil {
		return nil, err
	}
	d.debouncer = debouncer

	watcher, err := NewRecipeWatcher(cfg.Recipes.Dir, debouncer)
	if err != nil {
		return nil, err
	}
	d.watcher = watcher

	scheduler, err := NewScheduler()
	if err != nil {
		return nil, err
	}
	d.scheduler = scheduler

	return d, nil
}

// Run executes the daemon until the context is canceled, then shuts down
// within the stop timeout.
func (d *Daemon) Run(ctx context.Context) error {
	slog.Info("Daemon starting",
		logfields.Path(d.cfg.Recipes.Dir),
		slog.Int("queue_size", d.cfg.Daemon.QueueSize))

	d.queue.Start(ctx)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = d.debouncer.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		_ = d.watcher.Run(ctx)
	}()

	if interval := d.cfg.Daemon.RebuildIntervalDuration(); interval > 0 {
		_, err := d.scheduler.SchedulePeriodicRebuild(interval, func() {
			d.enqueueAll(TriggerScheduled)
		})
		if err != nil {
			return err
		}
		d.scheduler.Start(ctx)
	}

	var metricsSrv *http.Server
	if d.cfg.Metrics.Enabled {
		metricsSrv = d.startMetricsServer()
	}

	// Build everything once on startup so a fresh daemon converges.
	d.enqueueAll(TriggerStartup)

	<-ctx.Done()
	slog.Info("Daemon stopping")

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(stopCtx); err != nil {
			slog.Error("Metrics server shutdown failed", logfields.Error(err))
		}
	}
	if err := d.scheduler.Stop(stopCtx); err != nil {
		slog.Error("Scheduler shutdown failed", logfields.Error(err))
	}

	wg.Wait()
	d.queue.Stop()
	d.pub.Close()
	if err := d.pipe.Close(); err != nil {
		slog.Error("Workspace cleanup failed", logfields.Error(err))
	}
	if err := d.store.Close(); err != nil {
		slog.Error("History store close failed", logfields.Error(err))
	}

	slog.Info("Daemon stopped")
	return nil
}

// BuildPackage implements Builder: load the recipe fresh and run the full
// install pipeline.
func (d *Daemon) BuildPackage(ctx context.Context, pkg string, trigger Trigger) error {
	r, err := d.findRecipe(pkg)
	if err != nil {
		return err
	}
	slog.Info("Daemon build",
		logfields.Package(pkg),
		slog.String("trigger", string(trigger)))
	_, err = d.pipe.Install(ctx, r)
	return err
}

// onRecipeChanged is the debouncer emit callback: path of a changed recipe.
func (d *Daemon) onRecipeChanged(path string) {
	r, err := recipe.Load(path)
	if err != nil {
		slog.Error("Changed recipe failed to load",
			logfields.Recipe(path),
			logfields.Error(err))
		return
	}
	if _, err := d.queue.Enqueue(r.Package.Name, TriggerRecipeChange); err != nil {
		slog.Error("Failed to enqueue changed recipe",
			logfields.Package(r.Package.Name),
			logfields.Error(err))
	}
}

// enqueueAll queues a build for every recipe in the configured directory.
func (d *Daemon) enqueueAll(trigger Trigger) {
	recipes, err := recipe.LoadDir(d.cfg.Recipes.Dir)
	if err != nil {
		slog.Error("Failed to load recipes", logfields.Error(err))
		return
	}
	for _, r := range recipes {
		if _, err := d.queue.Enqueue(r.Package.Name, trigger); err != nil {
			slog.Error("Failed to enqueue recipe",
				logfields.Package(r.Package.Name),
				logfields.Error(err))
		}
	}
}

// findRecipe loads the recipe directory and returns the named package.
// Loading fresh per build picks up edits without daemon restarts.
func (d *Daemon) findRecipe(pkg string) (*recipe.Recipe, error) {
	recipes, err := recipe.LoadDir(d.cfg.Recipes.Dir)
	if err != nil {
		return nil, err
	}
	for _, r := range recipes {
		if r.Package.Name == pkg {
			return r, nil
		}
	}
	return nil, ferrors.NotFoundError("no recipe for package").
		WithContext("package", pkg).Build()
}

func (d *Daemon) startMetricsServer() *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(d.registry))

	srv := &http.Server{
		Addr:              d.cfg.Metrics.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("Metrics endpoint listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", logfields.Error(err))
		}
	}()
	return srv
}
