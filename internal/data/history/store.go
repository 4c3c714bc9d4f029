package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// Store persists scan snapshots and consistency-check outcomes in a local
// sqlite database. Safe for concurrent use; writes are serialized.
type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string, busyTimeout time.Duration) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	if busyTimeout <= 0 {
		busyTimeout = 2 * time.Second
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)",
		cleanPath, busyTimeout.Milliseconds())
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func (s *Store) SaveScan(scan Scan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if scan.SessionID == "" {
		return fmt.Errorf("scan session id must not be empty")
	}
	if scan.Timestamp.IsZero() {
		scan.Timestamp = time.Now().UTC()
	}

	query := `
INSERT INTO scans (
  session_id, ts_utc, trigger_kind, file_count, package_count,
  classifier_count, callable_count, symbol_count, duration_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(session_id, ts_utc) DO UPDATE SET
  trigger_kind=excluded.trigger_kind,
  file_count=excluded.file_count,
  package_count=excluded.package_count,
  classifier_count=excluded.classifier_count,
  callable_count=excluded.callable_count,
  symbol_count=excluded.symbol_count,
  duration_ms=excluded.duration_ms
`
	return s.withRetry("save scan", func() error {
		_, err := s.db.Exec(
			query,
			scan.SessionID,
			scan.Timestamp.UTC().Format(time.RFC3339Nano),
			scan.Trigger,
			scan.Files,
			scan.Packages,
			scan.Classifiers,
			scan.Callables,
			scan.Symbols,
			scan.Duration.Milliseconds(),
		)
		return err
	})
}

func (s *Store) SaveCheck(check Check) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if check.SessionID == "" {
		return fmt.Errorf("check session id must not be empty")
	}
	if check.Timestamp.IsZero() {
		check.Timestamp = time.Now().UTC()
	}

	query := `
INSERT INTO checks (
  session_id, ts_utc, mode, outcome, changed_count, lost_count, new_count, report
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(session_id, ts_utc) DO UPDATE SET
  mode=excluded.mode,
  outcome=excluded.outcome,
  changed_count=excluded.changed_count,
  lost_count=excluded.lost_count,
  new_count=excluded.new_count,
  report=excluded.report
`
	return s.withRetry("save check", func() error {
		_, err := s.db.Exec(
			query,
			check.SessionID,
			check.Timestamp.UTC().Format(time.RFC3339Nano),
			check.Mode,
			check.Outcome,
			check.Changed,
			check.Lost,
			check.New,
			check.Report,
		)
		return err
	})
}

func (s *Store) RecentScans(limit int) ([]Scan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}

	var scans []Scan
	err := s.withRetry("load scans", func() error {
		rows, err := s.db.Query(`
SELECT session_id, ts_utc, trigger_kind, file_count, package_count,
       classifier_count, callable_count, symbol_count, duration_ms
FROM scans
ORDER BY ts_utc DESC
LIMIT ?`, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		scans = scans[:0]
		for rows.Next() {
			var scan Scan
			var ts string
			var durationMS int64
			if err := rows.Scan(
				&scan.SessionID, &ts, &scan.Trigger, &scan.Files, &scan.Packages,
				&scan.Classifiers, &scan.Callables, &scan.Symbols, &durationMS,
			); err != nil {
				return err
			}
			scan.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
			scan.Duration = time.Duration(durationMS) * time.Millisecond
			scans = append(scans, scan)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return scans, nil
}

func (s *Store) RecentChecks(limit int) ([]Check, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}

	var checks []Check
	err := s.withRetry("load checks", func() error {
		rows, err := s.db.Query(`
SELECT session_id, ts_utc, mode, outcome, changed_count, lost_count, new_count, report
FROM checks
ORDER BY ts_utc DESC
LIMIT ?`, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		checks = checks[:0]
		for rows.Next() {
			var check Check
			var ts string
			if err := rows.Scan(
				&check.SessionID, &ts, &check.Mode, &check.Outcome,
				&check.Changed, &check.Lost, &check.New, &check.Report,
			); err != nil {
				return err
			}
			check.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
			checks = append(checks, check)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return checks, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
