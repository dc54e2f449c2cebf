package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	ferrors "git.home.luguber.info/inful/pkgbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pkgbuilder/internal/logfields"
	"git.home.luguber.info/inful/pkgbuilder/internal/metrics"
)

// Trigger records why a build was enqueued.
type Trigger string

const (
	TriggerRecipeChange Trigger = "recipe_change"
	TriggerScheduled    Trigger = "scheduled"
	TriggerStartup      Trigger = "startup"
)

// BuildJob is one queued build of one package.
type BuildJob struct {
	ID        string
	Package   string
	Trigger   Trigger
	CreatedAt time.Time
}

// Builder executes one package build. Implemented by the daemon on top of
// the pipeline.
type Builder interface {
	BuildPackage(ctx context.Context, pkg string, trigger Trigger) error
}

// BuildQueue serializes builds through a bounded channel and a single
// worker. A package that is already waiting is not enqueued twice; the
// later trigger is collapsed into the pending job.
type BuildQueue struct {
	jobs     chan *BuildJob
	builder  Builder
	recorder metrics.Recorder

	mu      sync.Mutex
	pending map[string]*BuildJob

	wg sync.WaitGroup
}

// NewBuildQueue creates a queue with the given capacity.
func NewBuildQueue(size int, builder Builder, recorder metrics.Recorder) *BuildQueue {
	if size <= 0 {
		size = 16
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &BuildQueue{
		jobs:     make(chan *BuildJob, size),
		builder:  builder,
		recorder: recorder,
		pending:  make(map[string]*BuildJob),
	}
}

// Start launches the worker goroutine.
func (q *BuildQueue) Start(ctx context.Context) {
	q.wg.Add(1)
	go q.worker(ctx)
}

// Stop waits for the worker to drain. The context passed to Start must be
// canceled first.
func (q *BuildQueue) Stop() {
	q.wg.Wait()
	slog.Info("Build queue stopped")
}

// Enqueue queues a build for pkg. Returns the job, or nil when the package
// already has a pending build.
func (q *BuildQueue) Enqueue(pkg string, trigger Trigger) (*BuildJob, error) {
	q.mu.Lock()
	if existing, ok := q.pending[pkg]; ok {
		q.mu.Unlock()
		slog.Debug("Build already pending, collapsing",
			logfields.Package(pkg),
			logfields.BuildID(existing.ID),
			slog.String("trigger", string(trigger)))
		return nil, nil
	}

	job := &BuildJob{
		ID:        uuid.New().String(),
		Package:   pkg,
		Trigger:   trigger,
		CreatedAt: time.Now(),
	}
	q.pending[pkg] = job
	depth := len(q.pending)
	q.mu.Unlock()

	select {
	case q.jobs <- job:
		q.recorder.SetQueueDepth(depth)
		slog.Info("Build enqueued",
			logfields.Package(pkg),
			logfields.BuildID(job.ID),
			slog.String("trigger", string(trigger)))
		return job, nil
	default:
		q.mu.Lock()
		delete(q.pending, pkg)
		q.mu.Unlock()
		return nil, ferrors.DaemonError("build queue is full").
			WithContext("package", pkg).Build()
	}
}

// Depth returns the number of packages waiting.
func (q *BuildQueue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *BuildQueue) worker(ctx context.Context) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job := <-q.jobs:
			q.mu.Lock()
			delete(q.pending, job.Package)
			q.recorder.SetQueueDepth(len(q.pending))
			q.mu.Unlock()

			if err := q.builder.BuildPackage(ctx, job.Package, job.Trigger); err != nil {
				slog.Error("Queued build failed",
					logfields.Package(job.Package),
					logfields.BuildID(job.ID),
					logfields.Error(err))
			}
		}
	}
}
