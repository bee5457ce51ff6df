// Package archive materializes project packages as .box zip archives.
package archive

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/klauern/boxsync/internal/errs"
	"github.com/klauern/boxsync/internal/logging"
	"github.com/klauern/boxsync/internal/model"
)

const (
	// OutputDirPerm is the permission for the archive directory (rwxr-x---)
	OutputDirPerm = 0o750
	// ArchiveFilePerm is the permission for archive files (rw-r-----)
	ArchiveFilePerm = 0o640
)

// Materialize writes the archive for a package target and returns its path.
// The output directory is created if missing and an existing archive is
// replaced. The archive is assembled in a temp file and renamed into place,
// so a failure never leaves a truncated archive behind.
func Materialize(t model.SyncTarget) (string, error) {
	if !t.IsPackage() {
		return "", &errs.FileSystemError{Op: "archive", Path: t.Path, Err: fmt.Errorf("not a package target")}
	}
	defer logging.Timer("archive")()

	outDir := filepath.Dir(t.ArchivePath)
	if err := os.MkdirAll(outDir, OutputDirPerm); err != nil {
		return "", &errs.FileSystemError{Op: "create output dir", Path: outDir, Err: err}
	}

	tmp, err := os.CreateTemp(outDir, ".box-*")
	if err != nil {
		return "", &errs.FileSystemError{Op: "create archive", Path: t.ArchivePath, Err: err}
	}
	tmpPath := tmp.Name()

	count, err := writeZip(tmp, t.RootDir, outDir)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return "", &errs.FileSystemError{Op: "write archive", Path: t.ArchivePath, Err: err}
	}

	if err := os.Chmod(tmpPath, ArchiveFilePerm); err != nil {
		_ = os.Remove(tmpPath)
		return "", &errs.FileSystemError{Op: "chmod archive", Path: t.ArchivePath, Err: err}
	}
	if err := os.Rename(tmpPath, t.ArchivePath); err != nil {
		_ = os.Remove(tmpPath)
		return "", &errs.FileSystemError{Op: "rename archive", Path: t.ArchivePath, Err: err}
	}

	logging.Debug("archive materialized",
		logging.Path(t.ArchivePath),
		logging.Count(count),
	)
	return t.ArchivePath, nil
}

// writeZip adds every regular file under root to a zip written to w, using
// slash-separated paths relative to root. skipDir and its contents are
// excluded. It returns the number of files written.
func writeZip(w io.Writer, root, skipDir string) (int, error) {
	zw := zip.NewWriter(w)
	count := 0

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if d.IsDir() {
			if path == skipDir {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			// Symlinks and special files are not packaged.
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if err := addFile(zw, path, filepath.ToSlash(rel), d); err != nil {
			return fmt.Errorf("add %s: %w", rel, err)
		}
		count++
		return nil
	})
	if walkErr != nil {
		_ = zw.Close()
		return count, walkErr
	}
	return count, zw.Close()
}

func addFile(zw *zip.Writer, path, name string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate
	header.Modified = info.ModTime().Truncate(time.Second)

	dst, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	// #nosec G304 - path comes from walking the project root
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	_, err = io.Copy(dst, src)
	return err
}

// Entries lists the file names stored in an archive, in archive order.
func Entries(path string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, &errs.FileSystemError{Op: "open archive", Path: path, Err: err}
	}
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names, nil
}
