package daemon

import (
	"context"
	"testing"
	"time"

	ferrors "git.home.luguber.info/inful/pkgbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pkgbuilder/internal/metrics"
)

type recordingBuilder struct {
	built chan string
}

func (b *recordingBuilder) BuildPackage(_ context.Context, pkg string, _ Trigger) error {
	b.built <- pkg
	return nil
}

func TestQueueProcessesJobs(t *testing.T) {
	builder := &recordingBuilder{built: make(chan string, 4)}
	q := NewBuildQueue(4, builder, metrics.NoopRecorder{})

	ctx, cancel := context.WithCancel(t.Context())
	q.Start(ctx)
	defer func() {
		cancel()
		q.Stop()
	}()

	job, err := q.Enqueue("fren", TriggerStartup)
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if job == nil {
		t.Fatal("expected a job")
	}

	select {
	case pkg := <-builder.built:
		if pkg != "fren" {
			t.Errorf("built %q, want fren", pkg)
		}
	case <-time.After(time.Second):
		t.Fatal("expected the queued build to run")
	}
}

func TestQueueCollapsesDuplicatePending(t *testing.T) {
	builder := &recordingBuilder{built: make(chan string, 4)}
	q := NewBuildQueue(4, builder, metrics.NoopRecorder{})

	// No worker running yet, so both enqueues race nothing.
	first, err := q.Enqueue("fren", TriggerRecipeChange)
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if first == nil {
		t.Fatal("expected a job for the first enqueue")
	}

	second, err := q.Enqueue("fren", TriggerScheduled)
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if second != nil {
		t.Error("duplicate pending package should collapse to nil job")
	}
	if q.Depth() != 1 {
		t.Errorf("depth = %d, want 1", q.Depth())
	}

	ctx, cancel := context.WithCancel(t.Context())
	q.Start(ctx)
	defer func() {
		cancel()
		q.Stop()
	}()

	select {
	case <-builder.built:
	case <-time.After(time.Second):
		t.Fatal("expected the collapsed build to run once")
	}
	select {
	case pkg := <-builder.built:
		t.Errorf("expected exactly one build, got extra for %q", pkg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestQueueFull(t *testing.T) {
	builder := &recordingBuilder{built: make(chan string, 4)}
	q := NewBuildQueue(1, builder, metrics.NoopRecorder{})

	if _, err := q.Enqueue("fren", TriggerStartup); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	_, err := q.Enqueue("chafa", TriggerStartup)
	if err == nil {
		t.Fatal("expected queue-full error")
	}
	if ferrors.CategoryOf(err) != ferrors.CategoryDaemon {
		t.Errorf("category = %v, want %v", ferrors.CategoryOf(err), ferrors.CategoryDaemon)
	}

	// The rejected package must not linger as pending.
	if q.Depth() != 1 {
		t.Errorf("depth = %d, want 1", q.Depth())
	}
}
