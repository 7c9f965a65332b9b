// Package journal records rewrite runs and the renames they performed in a
// SQLite database, so an interrupted run can be detected and a run undone.
package journal

import (
	"database/sql"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"
)

// busyTimeoutMS is how long SQLite waits (ms) before returning SQLITE_BUSY when locked.
// Two builds sharing a journal will serialise on it rather than fail immediately.
const busyTimeoutMS = 5000

// Open opens the journal database at path and enables WAL mode and foreign keys.
// The caller must call Close() when done.
// For an in-memory journal use path ":memory:".
func Open(path string) (*sql.DB, error) {
	pragmas := "_pragma=busy_timeout(" + strconv.Itoa(busyTimeoutMS) + ")&_pragma=foreign_keys(1)"
	var dsn string
	if path == ":memory:" {
		dsn = "file::memory:?" + pragmas
	} else {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		dsn = path + sep + pragmas
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// Each connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
