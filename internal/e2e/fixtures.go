package e2e

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauern/boxsync/internal/model"
)

// Fixture creates files for E2E tests below a base directory.
type Fixture struct {
	t       *testing.T
	baseDir string
}

// NewFixture creates a new fixture helper rooted at the given directory.
func NewFixture(t *testing.T, baseDir string) *Fixture {
	t.Helper()
	return &Fixture{t: t, baseDir: baseDir}
}

// Path returns an absolute path below the fixture base.
func (f *Fixture) Path(relPath string) string {
	return filepath.Join(f.baseDir, relPath)
}

// WriteFile writes content relative to the base, creating parent directories.
func (f *Fixture) WriteFile(relPath, content string) string {
	f.t.Helper()
	fullPath := f.Path(relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		f.t.Fatalf("failed to create directory for %s: %v", fullPath, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0o600); err != nil {
		f.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}
	return fullPath
}

// WriteProject lays out a project directory with every default marker and
// returns its root.
func (f *Fixture) WriteProject(relPath string) string {
	f.t.Helper()
	root := f.Path(relPath)
	for _, marker := range model.DefaultProjectMarkers {
		switch marker {
		case "main.js":
			f.WriteFile(filepath.Join(relPath, marker), "$app.start()")
		case "config.json":
			f.WriteFile(filepath.Join(relPath, marker), `{"info":{"name":"`+filepath.Base(root)+`"}}`)
		default:
			if err := os.MkdirAll(filepath.Join(root, marker), 0o750); err != nil {
				f.t.Fatalf("failed to create %s: %v", marker, err)
			}
		}
	}
	return root
}
