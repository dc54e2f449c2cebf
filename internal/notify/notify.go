// Package notify publishes build lifecycle events to NATS so that other
// systems (dashboards, chat bridges) can react to package builds.
package notify

import (
	"time"
)

// BuildEvent describes a finished (or started) build of one package.
type BuildEvent struct {
	BuildID    string    `json:"build_id"`
	Package    string    `json:"package"`
	Version    string    `json:"version,omitempty"`
	Outcome    string    `json:"outcome"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher delivers build events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	PublishBuildEvent(event *BuildEvent) error
	Close()
}

// NoopPublisher is used when notifications are disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishBuildEvent(*BuildEvent) error { return nil }
func (NoopPublisher) Close()                              {}
