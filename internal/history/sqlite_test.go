package history

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	ferrors "git.home.luguber.info/inful/pkgbuilder/internal/foundation/errors"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBeginFinishRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()
	buildID := uuid.New().String()

	if err := store.Begin(ctx, buildID, "fren", "1.4.0", "abc1234"); err != nil {
		t.Fatalf("failed to begin build: %v", err)
	}
	if err := store.Finish(ctx, buildID, OutcomeSuccess, nil); err != nil {
		t.Fatalf("failed to finish build: %v", err)
	}

	rec, _, err := store.GetByBuildID(ctx, buildID)
	if err != nil {
		t.Fatalf("failed to get build: %v", err)
	}
	if rec.Package != "fren" {
		t.Errorf("expected package fren, got %s", rec.Package)
	}
	if rec.Version != "1.4.0" {
		t.Errorf("expected version 1.4.0, got %s", rec.Version)
	}
	if rec.Outcome != OutcomeSuccess {
		t.Errorf("expected outcome %s, got %s", OutcomeSuccess, rec.Outcome)
	}
	if rec.FinishedAt.IsZero() {
		t.Error("expected finished_at to be set")
	}
}

func TestFinishRecordsError(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()
	buildID := uuid.New().String()

	if err := store.Begin(ctx, buildID, "fren", "1.4.0", ""); err != nil {
		t.Fatalf("failed to begin build: %v", err)
	}
	buildErr := errors.New("cargo build exited 101")
	if err := store.Finish(ctx, buildID, OutcomeFailure, buildErr); err != nil {
		t.Fatalf("failed to finish build: %v", err)
	}

	rec, _, err := store.GetByBuildID(ctx, buildID)
	if err != nil {
		t.Fatalf("failed to get build: %v", err)
	}
	if rec.Outcome != OutcomeFailure {
		t.Errorf("expected outcome %s, got %s", OutcomeFailure, rec.Outcome)
	}
	if rec.Error != buildErr.Error() {
		t.Errorf("expected error %q, got %q", buildErr.Error(), rec.Error)
	}
}

func TestFinishUnknownBuild(t *testing.T) {
	store := newTestStore(t)

	err := store.Finish(t.Context(), uuid.New().String(), OutcomeSuccess, nil)
	if err == nil {
		t.Fatal("expected error for unknown build")
	}
	if ferrors.CategoryOf(err) != ferrors.CategoryNotFound {
		t.Errorf("expected not-found category, got %v", ferrors.CategoryOf(err))
	}
}

func TestAppendEventsOrdered(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()
	buildID := uuid.New().String()

	if err := store.Begin(ctx, buildID, "fren", "1.4.0", ""); err != nil {
		t.Fatalf("failed to begin build: %v", err)
	}
	for _, msg := range []string{"clone", "build", "install"} {
		if err := store.Append(ctx, buildID, "step", msg); err != nil {
			t.Fatalf("failed to append event: %v", err)
		}
	}

	_, events, err := store.GetByBuildID(ctx, buildID)
	if err != nil {
		t.Fatalf("failed to get build: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Message != "clone" || events[2].Message != "install" {
		t.Errorf("events out of order: %v", events)
	}
}

func TestRecentAndByPackage(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	for _, pkg := range []string{"fren", "fren", "chafa", "fren"} {
		if err := store.Begin(ctx, uuid.New().String(), pkg, "1.0.0", ""); err != nil {
			t.Fatalf("failed to begin build: %v", err)
		}
	}

	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("failed to get recent builds: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 builds, got %d", len(recent))
	}

	frenBuilds, err := store.ByPackage(ctx, "fren", 10)
	if err != nil {
		t.Fatalf("failed to get package builds: %v", err)
	}
	if len(frenBuilds) != 3 {
		t.Fatalf("expected 3 fren builds, got %d", len(frenBuilds))
	}
	for _, rec := range frenBuilds {
		if rec.Package != "fren" {
			t.Errorf("expected package fren, got %s", rec.Package)
		}
	}
}

func TestPersistentFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	buildID := uuid.New().String()
	if err := store.Begin(t.Context(), buildID, "fren", "1.0.0", ""); err != nil {
		t.Fatalf("failed to begin build: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	rec, _, err := reopened.GetByBuildID(t.Context(), buildID)
	if err != nil {
		t.Fatalf("failed to get build after reopen: %v", err)
	}
	if rec.Package != "fren" {
		t.Errorf("expected package fren, got %s", rec.Package)
	}
}
