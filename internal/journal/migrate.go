package journal

import "database/sql"

// Migrate creates the runs and renames tables if they do not exist.
// Idempotent; safe to call every time the journal is opened.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at TEXT NOT NULL,
		completed_at TEXT,
		undone_at TEXT,
		index_path TEXT NOT NULL,
		document BLOB NOT NULL
	)`); err != nil {
		return err
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS renames (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		old_path TEXT NOT NULL,
		new_path TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		renamed_at TEXT NOT NULL
	)`); err != nil {
		return err
	}

	if _, err := db.Exec("CREATE INDEX IF NOT EXISTS idx_runs_index_path ON runs(index_path)"); err != nil {
		return err
	}
	if _, err := db.Exec("CREATE INDEX IF NOT EXISTS idx_renames_run_id ON renames(run_id)"); err != nil {
		return err
	}
	return nil
}
