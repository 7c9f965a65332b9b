package exclude

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile_notExist(t *testing.T) {
	patterns, err := LoadFile(filepath.Join(t.TempDir(), "nonexistent"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if patterns != nil {
		t.Errorf("LoadFile(nonexistent) = %v, want nil", patterns)
	}
}

func TestLoadFile_emptyAndComments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "excludes")
	if err := os.WriteFile(path, []byte("\n# comment\n  \n*.min.js\n# another\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	patterns, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(patterns) != 1 || patterns[0] != "*.min.js" {
		t.Errorf("LoadFile = %v, want [*.min.js]", patterns)
	}
}

func TestFileInDir(t *testing.T) {
	got := FileInDir("/site/public/")
	want := filepath.Join("/site/public", ".cachebustignore")
	if got != want {
		t.Errorf("FileInDir = %q, want %q", got, want)
	}
}

func TestPatternsForDocument_noFile(t *testing.T) {
	index := filepath.Join(t.TempDir(), "index.html")
	patterns, err := PatternsForDocument(index, []string{"vendor"})
	if err != nil {
		t.Fatalf("PatternsForDocument: %v", err)
	}
	if len(patterns) != 1 || patterns[0] != "vendor" {
		t.Errorf("PatternsForDocument = %v, want [vendor]", patterns)
	}
}

func TestPatternsForDocument_withFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("node_modules\n*.min.js\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	patterns, err := PatternsForDocument(filepath.Join(dir, "index.html"), []string{"vendor"})
	if err != nil {
		t.Fatalf("PatternsForDocument: %v", err)
	}
	want := []string{"vendor", "node_modules", "*.min.js"}
	if len(patterns) != len(want) {
		t.Fatalf("PatternsForDocument = %v, want %v", patterns, want)
	}
	for i := range want {
		if patterns[i] != want[i] {
			t.Errorf("patterns[%d] = %q, want %q", i, patterns[i], want[i])
		}
	}
}
