package journal

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// Write retry budget on top of busy_timeout, for journals shared by
// concurrent builds.
const (
	busyAttempts = 4
	busyBackoff  = 50 * time.Millisecond
	busyMaxSleep = 2 * time.Second
)

// IsBusy reports whether err is SQLITE_BUSY (database locked).
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "SQLITE_BUSY") || strings.Contains(s, "database is locked")
}

// retryOnBusy runs fn, retrying with doubling backoff while it fails with a
// busy error, up to attempts runs in total. The last error is returned.
func retryOnBusy(ctx context.Context, attempts int, backoff time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil || !IsBusy(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff = min(backoff*2, busyMaxSleep)
	}
	return err
}

// exec runs a write statement under the busy retry budget.
func exec(ctx context.Context, db *sql.DB, query string, args ...any) (sql.Result, error) {
	var res sql.Result
	err := retryOnBusy(ctx, busyAttempts, busyBackoff, func() error {
		r, err := db.ExecContext(ctx, query, args...)
		res = r
		return err
	})
	return res, err
}
