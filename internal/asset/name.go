package asset

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// hashSegmentLen is the length of a fingerprint segment recognised in a filename.
const hashSegmentLen = 8

// Name is an asset filename split into its parts. Hash is empty when the
// filename does not carry a fingerprint segment.
type Name struct {
	Dir  string
	Base string
	Hash string
	Ext  string
}

// Decompose splits path's base name on '.' from the right into at most three parts.
// Three parts with an 8-character alphanumeric middle part are read as
// base.hash.ext; otherwise the last part (if any) is the extension and the rest
// is the base name. The hash segment is recognised by shape only; it is not verified.
func Decompose(path string) Name {
	n := Name{Dir: filepath.Dir(path)}
	parts := rsplit(filepath.Base(path), ".", 3)
	if len(parts) == 3 && isHashSegment(parts[1]) {
		n.Base, n.Hash, n.Ext = parts[0], parts[1], parts[2]
		return n
	}
	if len(parts) == 1 {
		n.Base = parts[0]
		return n
	}
	n.Base = strings.Join(parts[:len(parts)-1], ".")
	n.Ext = parts[len(parts)-1]
	return n
}

// HasHash reports whether the filename carried a fingerprint segment.
func (n Name) HasHash() bool {
	return n.Hash != ""
}

// WithHash returns the path {dir}/{base}.{fingerprint}.{ext}. Any existing hash
// segment is replaced. An empty extension still leaves the trailing dot.
func (n Name) WithHash(fingerprint string) string {
	return filepath.Join(n.Dir, n.Base+"."+fingerprint+"."+n.Ext)
}

func isHashSegment(s string) bool {
	if utf8.RuneCountInString(s) != hashSegmentLen {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// rsplit splits s on sep from the right into at most n parts.
func rsplit(s, sep string, n int) []string {
	var tail []string
	for len(tail) < n-1 {
		i := strings.LastIndex(s, sep)
		if i < 0 {
			break
		}
		tail = append(tail, s[i+len(sep):])
		s = s[:i]
	}
	parts := make([]string, 0, len(tail)+1)
	parts = append(parts, s)
	for i := len(tail) - 1; i >= 0; i-- {
		parts = append(parts, tail[i])
	}
	return parts
}
