package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"net/textproto"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/jlaffaye/ftp"

	"github.com/klauern/boxsync/internal/errs"
	"github.com/klauern/boxsync/internal/logging"
	"github.com/klauern/boxsync/internal/model"
)

// FTPFactory creates clients for ftp:// addresses.
type FTPFactory struct{}

func (f *FTPFactory) Accept(u *url.URL) bool { return u.Scheme == "ftp" }

func (f *FTPFactory) Name() string { return "ftp" }

func (f *FTPFactory) Create(ctx context.Context, h model.Host, u *url.URL, opts Options) (Client, error) {
	addr := u.Host
	if u.Port() == "" {
		addr = net.JoinHostPort(u.Hostname(), "21")
	}

	dialOpts := []ftp.DialOption{ftp.DialWithContext(ctx)}
	if opts.Timeout > 0 {
		dialOpts = append(dialOpts, ftp.DialWithTimeout(opts.Timeout))
	}
	conn, err := ftp.Dial(addr, dialOpts...)
	if err != nil {
		return nil, &errs.TransportError{Host: h.String(), Op: "connect", Err: err}
	}

	user := "anonymous"
	if u.User != nil && u.User.Username() != "" {
		user = u.User.Username()
	}
	pw := password(u, opts)
	if pw == "" && user == "anonymous" {
		pw = "anonymous"
	}
	if err := conn.Login(user, pw); err != nil {
		_ = conn.Quit()
		return nil, &errs.TransportError{Host: h.String(), Op: "login", Err: err}
	}

	return &FTPClient{host: h, base: remoteBase(u), conn: conn, opts: opts}, nil
}

// FTPClient implements Client over a single FTP control connection.
type FTPClient struct {
	host model.Host
	base string
	conn *ftp.ServerConn
	opts Options
}

func (c *FTPClient) resolve(p string) string {
	return path.Join(c.base, p)
}

func (c *FTPClient) fail(op string, err error) error {
	return &errs.TransportError{Host: c.host.String(), Op: op, Err: err}
}

// Upload stores the file in the base directory.
func (c *FTPClient) Upload(ctx context.Context, localPath string) error {
	// #nosec G304 - localPath is the resolved sync target
	f, err := os.Open(localPath)
	if err != nil {
		return &errs.FileSystemError{Op: "open", Path: localPath, Err: err}
	}
	defer f.Close()

	if err := ctx.Err(); err != nil {
		return c.fail("upload", err)
	}

	var size int64 = -1
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}
	name := filepath.Base(localPath)
	logging.Debug("uploading", logging.Host(c.host.String()), logging.Path(localPath))
	if err := c.conn.Stor(c.resolve(name), c.opts.wrap(name, size, f)); err != nil {
		return c.fail("upload", err)
	}
	return nil
}

// List returns the entries of a directory below the base.
func (c *FTPClient) List(ctx context.Context, dir string) ([]model.RemoteEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, c.fail("list", err)
	}
	items, err := c.conn.List(c.resolve(dir))
	if err != nil {
		if isFTPNotFound(err) {
			return nil, &errs.NotFoundError{Host: c.host.String(), Path: dir}
		}
		return nil, c.fail("list", err)
	}

	entries := make([]model.RemoteEntry, 0, len(items))
	for _, e := range items {
		if e.Name == "." || e.Name == ".." {
			continue
		}
		entries = append(entries, model.RemoteEntry{Name: e.Name, Path: path.Join(dir, e.Name)})
	}
	return entries, nil
}

// Download retrieves a file below the base into w.
func (c *FTPClient) Download(ctx context.Context, remotePath string, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return c.fail("download", err)
	}
	resp, err := c.conn.Retr(c.resolve(remotePath))
	if err != nil {
		if isFTPNotFound(err) {
			return &errs.NotFoundError{Host: c.host.String(), Path: remotePath}
		}
		return c.fail("download", err)
	}
	defer resp.Close()

	return copyDownload(w, c.opts.wrap(remotePath, -1, resp), func(err error) error { return c.fail("download", err) })
}

// Close sends QUIT and closes the control connection.
func (c *FTPClient) Close() error {
	return c.conn.Quit()
}

// isFTPNotFound reports a 550 "file unavailable" reply.
func isFTPNotFound(err error) bool {
	var tpErr *textproto.Error
	return errors.As(err, &tpErr) && tpErr.Code == ftp.StatusFileUnavailable
}
