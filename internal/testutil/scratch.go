package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// ScratchDir returns a fresh directory for scratch files along with a
// function listing its current contents, sorted by name.
//
// Tests compare listings taken before and after a call to prove that no
// scratch files were left behind.
func ScratchDir(t *testing.T) (string, func() []string) {
	t.Helper()
	dir := t.TempDir()
	return dir, func() []string {
		t.Helper()
		return ListDir(t, dir)
	}
}

// ListDir returns the names of the entries in dir, sorted.
func ListDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// WriteFile writes content to name inside dir and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
