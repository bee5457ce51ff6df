//nolint:revive // var-naming - package name is meaningful
package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauern/boxsync/internal/model"
)

// WriteFile writes content to a file, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

// CreateProject lays out a project root containing every default marker
// under dir and returns its path.
func CreateProject(t *testing.T, dir string) string {
	t.Helper()
	for _, marker := range model.DefaultProjectMarkers {
		p := filepath.Join(dir, marker)
		if filepath.Ext(marker) != "" {
			WriteFile(t, p, "{}")
			continue
		}
		if err := os.MkdirAll(p, 0o750); err != nil {
			t.Fatalf("failed to create marker %s: %v", marker, err)
		}
	}
	return dir
}

// AssertNoError fails the test if err is not nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertEqual fails if got != want
func AssertEqual[T comparable](t *testing.T, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}
