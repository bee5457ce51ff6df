// Package target decides what a sync uploads for a given file: the file
// itself, or an archive of the project directory that contains it.
package target

import (
	"os"
	"path/filepath"

	"github.com/klauern/boxsync/internal/logging"
	"github.com/klauern/boxsync/internal/model"
)

// ArchiveExtension is appended to the project directory name.
const ArchiveExtension = ".box"

// Resolver walks up from a file looking for a project root.
type Resolver struct {
	markers   model.MarkerSet
	outputDir string
	readDir   func(string) ([]os.DirEntry, error)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMarkers overrides the project marker set.
func WithMarkers(m model.MarkerSet) Option {
	return func(r *Resolver) {
		if len(m) > 0 {
			r.markers = m
		}
	}
}

// WithOutputDir overrides the archive directory name inside a project root.
func WithOutputDir(dir string) Option {
	return func(r *Resolver) {
		if dir != "" {
			r.outputDir = dir
		}
	}
}

// NewResolver creates a resolver with the default markers and ".output".
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		markers:   model.DefaultMarkerSet(),
		outputDir: ".output",
		readDir:   os.ReadDir,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns a package target rooted at the nearest ancestor of
// filePath whose entries include every marker, or a script target for
// filePath when no ancestor qualifies. Directories that cannot be listed
// count as non-matching and the walk continues upward.
func (r *Resolver) Resolve(filePath string) model.SyncTarget {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		abs = filepath.Clean(filePath)
	}

	dir := filepath.Dir(abs)
	for {
		if r.isProjectRoot(dir) {
			t := model.Package(dir, r.ArchivePath(dir))
			logging.Debug("resolved package target", logging.Path(filePath), logging.Target(t.Display()))
			return t
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	logging.Debug("resolved script target", logging.Path(filePath))
	return model.Script(filePath)
}

// ArchivePath returns where the archive for rootDir is written.
func (r *Resolver) ArchivePath(rootDir string) string {
	return filepath.Join(rootDir, r.outputDir, filepath.Base(rootDir)+ArchiveExtension)
}

// OutputDir returns the archive directory name used inside project roots.
func (r *Resolver) OutputDir() string {
	return r.outputDir
}

func (r *Resolver) isProjectRoot(dir string) bool {
	entries, err := r.readDir(dir)
	if err != nil {
		// os.ReadDir returns what it read before the error; a partial
		// listing is not trusted.
		logging.Debug("skipping unreadable directory", logging.Path(dir), logging.Err(err))
		return false
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return r.markers.MatchedBy(names)
}
