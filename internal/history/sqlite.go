package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	ferrors "git.home.luguber.info/inful/pkgbuilder/internal/foundation/errors"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (and initializes) the build history database.
// Use ":memory:" for an in-memory database, or a file path for persistence.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		build_id TEXT PRIMARY KEY,
		package TEXT NOT NULL,
		version TEXT NOT NULL,
		commit_hash TEXT,
		outcome TEXT NOT NULL DEFAULT '',
		error TEXT,
		started_at INTEGER NOT NULL,
		finished_at INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_builds_package ON builds(package);
	CREATE INDEX IF NOT EXISTS idx_builds_started ON builds(started_at);

	CREATE TABLE IF NOT EXISTS build_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		message TEXT,
		timestamp INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_build_id ON build_events(build_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Begin records the start of a build.
func (s *SQLiteStore) Begin(ctx context.Context, buildID, pkg, version, commit string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO builds (build_id, package, version, commit_hash, started_at) VALUES (?, ?, ?, ?, ?)",
		buildID, pkg, version, commit, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert build: %w", err)
	}
	return nil
}

// Finish records a build's outcome. A nil buildErr leaves the error column empty.
func (s *SQLiteStore) Finish(ctx context.Context, buildID string, outcome Outcome, buildErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	errText := ""
	if buildErr != nil {
		errText = buildErr.Error()
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE builds SET outcome = ?, error = ?, finished_at = ? WHERE build_id = ?",
		string(outcome), errText, time.Now().Unix(), buildID,
	)
	if err != nil {
		return fmt.Errorf("update build: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ferrors.NotFoundError("unknown build").WithContext("build_id", buildID).Build()
	}
	return nil
}

// Append adds a timestamped event to a build.
func (s *SQLiteStore) Append(ctx context.Context, buildID, eventType, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO build_events (build_id, event_type, message, timestamp) VALUES (?, ?, ?, ?)",
		buildID, eventType, message, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetByBuildID retrieves one build record along with its events.
func (s *SQLiteStore) GetByBuildID(ctx context.Context, buildID string) (Record, []Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT build_id, package, version, commit_hash, outcome, error, started_at, finished_at FROM builds WHERE build_id = ?",
		buildID,
	)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return Record{}, nil, ferrors.NotFoundError("unknown build").WithContext("build_id", buildID).Build()
	}
	if err != nil {
		return Record{}, nil, fmt.Errorf("query build: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, build_id, event_type, message, timestamp FROM build_events WHERE build_id = ? ORDER BY id",
		buildID,
	)
	if err != nil {
		return Record{}, nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var ts int64
		if err := rows.Scan(&e.ID, &e.BuildID, &e.Type, &e.Message, &ts); err != nil {
			return Record{}, nil, fmt.Errorf("scan event: %w", err)
		}
		e.Timestamp = time.Unix(ts, 0)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return Record{}, nil, fmt.Errorf("iterate rows: %w", err)
	}

	return rec, events, nil
}

// Recent returns the most recently started builds across all packages.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT build_id, package, version, commit_hash, outcome, error, started_at, finished_at FROM builds ORDER BY started_at DESC, build_id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ByPackage returns the most recent builds of one package.
func (s *SQLiteStore) ByPackage(ctx context.Context, pkg string, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT build_id, package, version, commit_hash, outcome, error, started_at, finished_at FROM builds WHERE package = ? ORDER BY started_at DESC, build_id DESC LIMIT ?",
		pkg, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var outcome string
	var commit, errText sql.NullString
	var started int64
	var finished sql.NullInt64

	err := row.Scan(&rec.BuildID, &rec.Package, &rec.Version, &commit, &outcome, &errText, &started, &finished)
	if err != nil {
		return Record{}, err
	}

	rec.Commit = commit.String
	rec.Outcome = Outcome(outcome)
	rec.Error = errText.String
	rec.StartedAt = time.Unix(started, 0)
	if finished.Valid {
		rec.FinishedAt = time.Unix(finished.Int64, 0)
	}
	return rec, nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return records, nil
}
