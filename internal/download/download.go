// Package download pulls files from a device to the local disk.
package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauern/boxsync/internal/errs"
	"github.com/klauern/boxsync/internal/logging"
	"github.com/klauern/boxsync/internal/model"
	"github.com/klauern/boxsync/internal/transport"
)

// PartSuffix marks a download still in progress.
const PartSuffix = ".part"

// FilePerm is the permission for downloaded files.
const FilePerm = 0o644

// EntryChooser picks one remote entry. ok is false when the user cancels.
type EntryChooser interface {
	ChooseEntry(ctx context.Context, entries []model.RemoteEntry) (e model.RemoteEntry, ok bool, err error)
}

// EntryChooserFunc adapts a function to EntryChooser.
type EntryChooserFunc func(ctx context.Context, entries []model.RemoteEntry) (model.RemoteEntry, bool, error)

// ChooseEntry calls f.
func (f EntryChooserFunc) ChooseEntry(ctx context.Context, entries []model.RemoteEntry) (model.RemoteEntry, bool, error) {
	return f(ctx, entries)
}

// Resolver lists and fetches remote files through a transport.Dialer.
type Resolver struct {
	dialer transport.Dialer
}

// NewResolver creates a Resolver.
func NewResolver(dialer transport.Dialer) *Resolver {
	return &Resolver{dialer: dialer}
}

// List returns the entries of remoteDir on h.
func (r *Resolver) List(ctx context.Context, h model.Host, remoteDir string) ([]model.RemoteEntry, error) {
	client, err := r.dialer.Dial(ctx, h)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	entries, err := client.List(ctx, remoteDir)
	if err != nil {
		return nil, err
	}
	logging.WithContext(ctx).Debug("listed remote directory",
		logging.Host(h.String()), logging.Path(remoteDir), logging.Count(len(entries)))
	return entries, nil
}

// Select lists remoteDir and lets chooser pick one entry. ok is false when
// the listing is empty or the user cancels.
func (r *Resolver) Select(ctx context.Context, h model.Host, remoteDir string, chooser EntryChooser) (model.RemoteEntry, bool, error) {
	entries, err := r.List(ctx, h, remoteDir)
	if err != nil {
		return model.RemoteEntry{}, false, err
	}
	if len(entries) == 0 {
		return model.RemoteEntry{}, false, nil
	}
	return chooser.ChooseEntry(ctx, entries)
}

// SavePath returns where remotePath is stored for the chosen destination:
// scripts keep dest as-is, anything else (a project) gets ".zip" appended.
func SavePath(remotePath, dest string) string {
	if model.IsScriptPath(remotePath) {
		return dest
	}
	return dest + ".zip"
}

// DefaultDest returns the destination used when none is given: the remote
// base name inside dir.
func DefaultDest(remotePath, dir string) string {
	name := filepath.Base(filepath.FromSlash(remotePath))
	if name == "." || name == string(filepath.Separator) {
		name = "download"
	}
	return filepath.Join(dir, name)
}

// Fetch downloads remotePath from h and returns the saved path. Bytes go to
// a ".part" file that is renamed on success and removed on any failure, so
// nothing is left at the destination when the download fails.
func (r *Resolver) Fetch(ctx context.Context, h model.Host, remotePath, dest string) (string, error) {
	saved := SavePath(remotePath, dest)
	logger := logging.WithContext(ctx).With(logging.Host(h.String()), logging.Path(remotePath))
	defer logging.Timer("download")()

	client, err := r.dialer.Dial(ctx, h)
	if err != nil {
		return "", err
	}
	defer client.Close()

	if err := os.MkdirAll(filepath.Dir(saved), 0o750); err != nil {
		return "", &errs.FileSystemError{Op: "create directory", Path: filepath.Dir(saved), Err: err}
	}

	part := saved + PartSuffix
	// #nosec G304 - destination is chosen by the user
	f, err := os.OpenFile(part, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, FilePerm)
	if err != nil {
		return "", &errs.FileSystemError{Op: "create", Path: part, Err: err}
	}

	err = client.Download(ctx, remotePath, f)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = &errs.FileSystemError{Op: "write", Path: part, Err: closeErr}
	}
	if err != nil {
		_ = os.Remove(part)
		logger.Warn("download failed", logging.Err(err))
		return "", err
	}

	if err := os.Rename(part, saved); err != nil {
		_ = os.Remove(part)
		return "", &errs.FileSystemError{Op: "rename", Path: saved, Err: err}
	}
	logger.Info("downloaded", logging.Target(saved))
	return saved, nil
}

// Describe returns a short line for a finished download.
func Describe(h model.Host, remotePath, saved string) string {
	return fmt.Sprintf("%s from %s -> %s", remotePath, h.Name, saved)
}
