package rehash

import "github.com/eargollo/cachebust/internal/asset"

// Outcome is what happened to a single reference.
type Outcome int

const (
	// Missing: the referenced file does not exist; the reference is left as written.
	Missing Outcome = iota
	// Unchanged: the filename already carries the current fingerprint.
	Unchanged
	// Renamed: the file was renamed (or, in a dry run, would be) and the reference rewritten.
	Renamed
	// Excluded: the reference matched an exclude pattern and was not inspected.
	Excluded
)

func (o Outcome) String() string {
	switch o {
	case Missing:
		return "missing"
	case Unchanged:
		return "unchanged"
	case Renamed:
		return "renamed"
	case Excluded:
		return "excluded"
	default:
		return "unknown"
	}
}

// Result is the outcome for one reference. Path is the reference resolved
// against the document directory; NewPath and Fingerprint are set once the
// file was fingerprinted.
type Result struct {
	Ref         asset.Reference
	Path        string
	NewPath     string
	Fingerprint string
	Outcome     Outcome
}

// Report lists the outcome of every local reference in document order.
type Report struct {
	IndexPath string
	RunID     int64 // journal run, 0 when not journaled
	DryRun    bool
	Results   []Result
}

// Count returns how many references ended with outcome o.
func (r *Report) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}
