package history

import (
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS scans (
  session_id TEXT NOT NULL,
  ts_utc TEXT NOT NULL,
  trigger_kind TEXT NOT NULL,
  file_count INTEGER NOT NULL,
  package_count INTEGER NOT NULL,
  classifier_count INTEGER NOT NULL,
  callable_count INTEGER NOT NULL,
  symbol_count INTEGER NOT NULL,
  duration_ms INTEGER NOT NULL,
  created_at_utc TEXT NOT NULL DEFAULT (CURRENT_TIMESTAMP),
  PRIMARY KEY (session_id, ts_utc)
);
CREATE INDEX IF NOT EXISTS idx_scans_ts ON scans(ts_utc);

CREATE TABLE IF NOT EXISTS checks (
  session_id TEXT NOT NULL,
  ts_utc TEXT NOT NULL,
  mode TEXT NOT NULL,
  outcome TEXT NOT NULL,
  changed_count INTEGER NOT NULL,
  lost_count INTEGER NOT NULL,
  new_count INTEGER NOT NULL,
  report TEXT NOT NULL DEFAULT '',
  created_at_utc TEXT NOT NULL DEFAULT (CURRENT_TIMESTAMP),
  PRIMARY KEY (session_id, ts_utc)
);
CREATE INDEX IF NOT EXISTS idx_checks_ts ON checks(ts_utc);
CREATE INDEX IF NOT EXISTS idx_checks_outcome ON checks(outcome);
`,
	},
}

func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  applied_at_utc TEXT NOT NULL DEFAULT (CURRENT_TIMESTAMP)
);
`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	var current int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("read schema_migrations version: %w", err)
	}
	if current > SchemaVersion {
		return fmt.Errorf("schema version %d is newer than supported version %d", current, SchemaVersion)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version) VALUES (?)`, m.version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
	}

	return nil
}
