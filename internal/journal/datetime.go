package journal

import (
	"fmt"
	"time"
)

// rfc3339Time implements sql.Scanner for non-null TEXT datetimes stored in RFC3339.
type rfc3339Time struct{ time.Time }

// Scan implements sql.Scanner. Accepts string, []byte, or nil (treated as zero time).
func (t *rfc3339Time) Scan(value any) error {
	if value == nil {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := parseRFC3339(value)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// nullRFC3339Time implements sql.Scanner for nullable TEXT datetimes (completed_at, undone_at).
type nullRFC3339Time struct {
	Time  time.Time
	Valid bool
}

// Scan implements sql.Scanner. nil and empty strings scan as Valid = false.
func (n *nullRFC3339Time) Scan(value any) error {
	n.Time, n.Valid = time.Time{}, false
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
	case []byte:
		if len(v) == 0 {
			return nil
		}
	}
	parsed, err := parseRFC3339(value)
	if err != nil {
		return err
	}
	n.Time, n.Valid = parsed, true
	return nil
}

// Ptr returns *time.Time for use in structs; returns nil if not Valid.
func (n *nullRFC3339Time) Ptr() *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}

func parseRFC3339(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		return time.Parse(time.RFC3339Nano, v)
	case []byte:
		return time.Parse(time.RFC3339Nano, string(v))
	default:
		return time.Time{}, fmt.Errorf("cannot scan %T into time", value)
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
