// Package history records build outcomes in a SQLite database so that
// past builds can be listed and inspected per package.
package history

import (
	"context"
	"time"
)

// Outcome classifies how a build finished.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomeSkipped Outcome = "skipped"
)

// Record is one build of one package.
type Record struct {
	BuildID    string
	Package    string
	Version    string
	Commit     string
	Outcome    Outcome
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration is the wall-clock build time, zero while the build is running.
func (r Record) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Event is a timestamped step within a build (clone, step output, install).
type Event struct {
	ID        int64
	BuildID   string
	Type      string
	Message   string
	Timestamp time.Time
}

// Store persists build records and their events.
type Store interface {
	Begin(ctx context.Context, buildID, pkg, version, commit string) error
	Finish(ctx context.Context, buildID string, outcome Outcome, buildErr error) error
	Append(ctx context.Context, buildID, eventType, message string) error
	GetByBuildID(ctx context.Context, buildID string) (Record, []Event, error)
	Recent(ctx context.Context, limit int) ([]Record, error)
	ByPackage(ctx context.Context, pkg string, limit int) ([]Record, error)
	Close() error
}
