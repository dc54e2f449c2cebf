package daemon

import (
	"context"
	"sync"
	"time"

	ferrors "git.home.luguber.info/inful/pkgbuilder/internal/foundation/errors"
)

// DebouncerConfig controls change coalescing.
type DebouncerConfig struct {
	// QuietWindow is how long a key must stay quiet before it fires.
	QuietWindow time.Duration
	// MaxDelay bounds how long a continuously-changing key can be postponed.
	MaxDelay time.Duration
}

// Debouncer coalesces bursts of change notifications per key into a single
// emit. A key fires once its quiet window elapses without further
// notifications, or once the max delay since its first notification is
// reached, whichever comes first.
//
// It is safe to call Notify from any goroutine while Run executes.
type Debouncer struct {
	cfg  DebouncerConfig
	emit func(key string)

	notify chan string

	mu      sync.Mutex
	pending map[string]*pendingKey
}

type pendingKey struct {
	first time.Time
	last  time.Time
}

// NewDebouncer creates a debouncer that calls emit for each fired key.
func NewDebouncer(cfg DebouncerConfig, emit func(key string)) (*Debouncer, error) {
	if cfg.QuietWindow <= 0 {
		return nil, ferrors.ValidationError("quiet window must be > 0").Build()
	}
	if cfg.MaxDelay <= 0 {
		return nil, ferrors.ValidationError("max delay must be > 0").Build()
	}
	if emit == nil {
		return nil, ferrors.ValidationError("emit callback is required").Build()
	}
	return &Debouncer{
		cfg:     cfg,
		emit:    emit,
		notify:  make(chan string, 64),
		pending: make(map[string]*pendingKey),
	}, nil
}

// Notify records a change for key. Dropping is preferred over blocking when
// the internal buffer is full: a dropped notification only delays
// coalescing, it never loses the key (earlier notifications keep it pending).
func (d *Debouncer) Notify(key string) {
	select {
	case d.notify <- key:
	default:
	}
}

// Run processes notifications until the context is canceled.
func (d *Debouncer) Run(ctx context.Context) error {
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	var timerC <-chan time.Time

	rearm := func() {
		deadline, ok := d.nextDeadline()
		if !ok {
			timerC = nil
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(time.Until(deadline))
		timerC = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case key := <-d.notify:
			d.record(key)
			rearm()
		case <-timerC:
			for _, key := range d.takeDue() {
				d.emit(key)
			}
			rearm()
		}
	}
}

func (d *Debouncer) record(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	if entry, ok := d.pending[key]; ok {
		entry.last = now
		return
	}
	d.pending[key] = &pendingKey{first: now, last: now}
}

// deadline is when one pending key becomes due.
func (d *Debouncer) deadline(entry *pendingKey) time.Time {
	quiet := entry.last.Add(d.cfg.QuietWindow)
	max := entry.first.Add(d.cfg.MaxDelay)
	if max.Before(quiet) {
		return max
	}
	return quiet
}

// nextDeadline returns the earliest deadline across pending keys.
func (d *Debouncer) nextDeadline() (time.Time, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var earliest time.Time
	for _, entry := range d.pending {
		dl := d.deadline(entry)
		if earliest.IsZero() || dl.Before(earliest) {
			earliest = dl
		}
	}
	return earliest, !earliest.IsZero()
}

// takeDue removes and returns all keys whose deadline has passed.
func (d *Debouncer) takeDue() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	var due []string
	for key, entry := range d.pending {
		if !d.deadline(entry).After(now) {
			due = append(due, key)
			delete(d.pending, key)
		}
	}
	return due
}
