package journal

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrNoRun is returned when a requested run does not exist.
var ErrNoRun = errors.New("journal: no such run")

// Run is a single rewrite of one document. CompletedAt is nil until the
// rewritten document was saved; UndoneAt is set once the run was reversed.
type Run struct {
	ID          int64
	CreatedAt   time.Time
	CompletedAt *time.Time
	UndoneAt    *time.Time
	IndexPath   string
	Document    []byte // document content before the run
}

// Completed reports whether the run saved its document.
func (r *Run) Completed() bool { return r.CompletedAt != nil }

// Undone reports whether the run was reversed.
func (r *Run) Undone() bool { return r.UndoneAt != nil }

const runColumns = "id, created_at, completed_at, undone_at, index_path, document"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var r Run
	var createdAt rfc3339Time
	var completedAt, undoneAt nullRFC3339Time
	if err := row.Scan(&r.ID, &createdAt, &completedAt, &undoneAt, &r.IndexPath, &r.Document); err != nil {
		return nil, err
	}
	r.CreatedAt = createdAt.Time
	r.CompletedAt = completedAt.Ptr()
	r.UndoneAt = undoneAt.Ptr()
	return &r, nil
}

// CreateRun inserts a new run for indexPath holding the original document content.
// completed_at is left null until the document is saved.
func CreateRun(ctx context.Context, db *sql.DB, indexPath string, document []byte) (*Run, error) {
	createdAt := now()
	if document == nil {
		document = []byte{}
	}
	res, err := exec(ctx, db,
		"INSERT INTO runs (created_at, index_path, document) VALUES (?, ?, ?)",
		createdAt, indexPath, document)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	parsed, _ := time.Parse(time.RFC3339Nano, createdAt)
	return &Run{ID: id, CreatedAt: parsed, IndexPath: indexPath, Document: document}, nil
}

// CompleteRun sets completed_at for the run.
func CompleteRun(ctx context.Context, db *sql.DB, runID int64) error {
	return updateRun(ctx, db, "UPDATE runs SET completed_at = ? WHERE id = ?", runID)
}

// MarkRunUndone sets undone_at for the run.
func MarkRunUndone(ctx context.Context, db *sql.DB, runID int64) error {
	return updateRun(ctx, db, "UPDATE runs SET undone_at = ? WHERE id = ?", runID)
}

func updateRun(ctx context.Context, db *sql.DB, query string, runID int64) error {
	res, err := exec(ctx, db, query, now(), runID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoRun
	}
	return nil
}

// GetRun returns the run with the given id, or ErrNoRun if not found.
func GetRun(ctx context.Context, db *sql.DB, id int64) (*Run, error) {
	r, err := scanRun(db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRun
	}
	return r, err
}

// LatestRun returns the newest run that has not been undone, or ErrNoRun.
func LatestRun(ctx context.Context, db *sql.DB) (*Run, error) {
	r, err := scanRun(db.QueryRowContext(ctx,
		"SELECT "+runColumns+" FROM runs WHERE undone_at IS NULL ORDER BY id DESC LIMIT 1"))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRun
	}
	return r, err
}

// ListRuns returns up to limit runs, newest first. limit <= 0 means all runs.
func ListRuns(ctx context.Context, db *sql.DB, limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return queryRuns(ctx, db, query, args...)
}

// IncompleteRuns returns runs for indexPath that never completed and were not
// undone, oldest first, excluding the run with id exceptID.
func IncompleteRuns(ctx context.Context, db *sql.DB, indexPath string, exceptID int64) ([]Run, error) {
	return queryRuns(ctx, db,
		"SELECT "+runColumns+" FROM runs WHERE index_path = ? AND completed_at IS NULL AND undone_at IS NULL AND id != ? ORDER BY id",
		indexPath, exceptID)
}

func queryRuns(ctx context.Context, db *sql.DB, query string, args ...any) ([]Run, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}
