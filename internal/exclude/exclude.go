// Package exclude decides which document references are left alone.
package exclude

import (
	"path"
	"strings"
)

// Match reports whether ref should be excluded by any of the patterns.
// If patterns is nil or empty, returns false. ref is a document reference, so
// it is matched in slash form regardless of OS.
// Pattern format:
//   - If pattern contains '*' or '?', it is a glob matched against the reference's base name (e.g. "*.min.js").
//   - Otherwise it is a path segment: any reference that has that segment as a component is excluded (e.g. "vendor").
func Match(ref string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	normalized := strings.ReplaceAll(ref, "\\", "/")
	base := path.Base(normalized)
	for _, p := range patterns {
		if strings.ContainsAny(p, "*?") {
			if matched, _ := path.Match(p, base); matched {
				return true
			}
			continue
		}
		if segmentMatches(normalized, p) {
			return true
		}
	}
	return false
}

// segmentMatches reports whether ref has segment as a path component.
func segmentMatches(ref, segment string) bool {
	for _, part := range strings.Split(ref, "/") {
		if part == segment {
			return true
		}
	}
	return false
}
