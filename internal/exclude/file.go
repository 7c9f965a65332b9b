package exclude

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the ignore file looked for next to the document (like .gitignore).
const FileName = ".cachebustignore"

// LoadFile reads path and returns exclude patterns (one per non-empty line).
// Lines starting with # are comments and skipped. Leading/trailing whitespace is trimmed.
// If the file does not exist, returns nil, nil. On read error returns nil, err.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path) // #nosec G304 -- path derived from the document location
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var patterns []string
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return patterns, nil
}

// FileInDir returns the path to the ignore file inside dir (e.g. dir/.cachebustignore).
func FileInDir(dir string) string {
	return filepath.Join(filepath.Clean(dir), FileName)
}

// PatternsForDocument returns extra merged with the patterns of the ignore
// file next to the document at indexPath, if that file exists.
func PatternsForDocument(indexPath string, extra []string) ([]string, error) {
	patterns := append([]string(nil), extra...)
	filePatterns, err := LoadFile(FileInDir(filepath.Dir(indexPath)))
	if err != nil {
		return nil, err
	}
	return append(patterns, filePatterns...), nil
}
