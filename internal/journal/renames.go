package journal

import (
	"context"
	"database/sql"
	"time"
)

// Rename is one file rename performed by a run. Paths are absolute.
type Rename struct {
	ID          int64
	RunID       int64
	OldPath     string
	NewPath     string
	Fingerprint string
	RenamedAt   time.Time
}

// InsertRename records a rename for the run.
func InsertRename(ctx context.Context, db *sql.DB, runID int64, oldPath, newPath, fingerprint string) error {
	_, err := exec(ctx, db,
		"INSERT INTO renames (run_id, old_path, new_path, fingerprint, renamed_at) VALUES (?, ?, ?, ?, ?)",
		runID, oldPath, newPath, fingerprint, now())
	return err
}

// ListRenames returns the renames of the run in the order they were performed.
func ListRenames(ctx context.Context, db *sql.DB, runID int64) ([]Rename, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, run_id, old_path, new_path, fingerprint, renamed_at FROM renames WHERE run_id = ? ORDER BY id",
		runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Rename
	for rows.Next() {
		var r Rename
		var renamedAt rfc3339Time
		if err := rows.Scan(&r.ID, &r.RunID, &r.OldPath, &r.NewPath, &r.Fingerprint, &renamedAt); err != nil {
			return nil, err
		}
		r.RenamedAt = renamedAt.Time
		out = append(out, r)
	}
	return out, rows.Err()
}
