package model

// TargetKind distinguishes a single script from a whole project package.
type TargetKind string

const (
	// KindScript syncs the original file as-is.
	KindScript TargetKind = "script"
	// KindPackage syncs an archive of a detected project directory.
	KindPackage TargetKind = "package"
)

// SyncTarget is the thing that gets uploaded for one sync invocation.
type SyncTarget struct {
	Kind TargetKind
	// Path is the file to sync when Kind is KindScript.
	Path string
	// RootDir is the project root when Kind is KindPackage.
	RootDir string
	// ArchivePath is where the package archive is materialized.
	ArchivePath string
}

// Script returns a script target for path.
func Script(path string) SyncTarget {
	return SyncTarget{Kind: KindScript, Path: path}
}

// Package returns a package target for a project root.
func Package(rootDir, archivePath string) SyncTarget {
	return SyncTarget{Kind: KindPackage, RootDir: rootDir, ArchivePath: archivePath}
}

// IsPackage returns true for package targets.
func (t SyncTarget) IsPackage() bool {
	return t.Kind == KindPackage
}

// UploadPath returns the local file that is sent to the device.
func (t SyncTarget) UploadPath() string {
	if t.IsPackage() {
		return t.ArchivePath
	}
	return t.Path
}

// Display returns a short human-readable description of the target.
func (t SyncTarget) Display() string {
	if t.IsPackage() {
		return "package " + t.RootDir
	}
	return "script " + t.Path
}
