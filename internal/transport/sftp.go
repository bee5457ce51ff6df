package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/klauern/boxsync/internal/errs"
	"github.com/klauern/boxsync/internal/logging"
	"github.com/klauern/boxsync/internal/model"
	"github.com/klauern/boxsync/internal/util"
)

// SFTPFactory creates clients for sftp:// addresses.
type SFTPFactory struct{}

func (f *SFTPFactory) Accept(u *url.URL) bool { return u.Scheme == "sftp" }

func (f *SFTPFactory) Name() string { return "sftp" }

func (f *SFTPFactory) Create(ctx context.Context, h model.Host, u *url.URL, opts Options) (Client, error) {
	fail := func(err error) error {
		return &errs.TransportError{Host: h.String(), Op: "connect", Err: err}
	}

	config, err := sshConfig(u, opts)
	if err != nil {
		return nil, fail(err)
	}

	addr := u.Host
	if u.Port() == "" {
		addr = net.JoinHostPort(u.Hostname(), "22")
	}

	dialer := net.Dialer{Timeout: opts.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fail(err)
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		_ = conn.Close()
		return nil, fail(err)
	}
	sshClient := ssh.NewClient(sshConn, chans, reqs)

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		_ = sshClient.Close()
		return nil, fail(err)
	}

	return &SFTPClient{
		host:   h,
		base:   remoteBase(u),
		client: client,
		closer: sshClient,
		opts:   opts,
	}, nil
}

func sshConfig(u *url.URL, opts Options) (*ssh.ClientConfig, error) {
	var auth []ssh.AuthMethod
	if opts.SSHKeyFile != "" {
		keyPath := util.ExpandPath(opts.SSHKeyFile, "")
		// #nosec G304 - key file is user configuration
		key, err := os.ReadFile(keyPath)
		if err != nil {
			return nil, fmt.Errorf("read ssh key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("parse ssh key: %w", err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if pw := password(u, opts); pw != "" {
		auth = append(auth, ssh.Password(pw))
	}
	if len(auth) == 0 {
		return nil, errors.New("no ssh key or password configured")
	}

	hostKey := ssh.InsecureIgnoreHostKey() // #nosec G106 - opt-in via insecure_host_key
	if !opts.InsecureHostKey {
		known := opts.KnownHosts
		if known == "" {
			known = util.KnownHostsPath()
		}
		cb, err := knownhosts.New(util.ExpandPath(known, ""))
		if err != nil {
			return nil, fmt.Errorf("load known hosts: %w", err)
		}
		hostKey = cb
	}

	return &ssh.ClientConfig{
		User:            username(u),
		Auth:            auth,
		HostKeyCallback: hostKey,
		Timeout:         opts.Timeout,
	}, nil
}

func username(u *url.URL) string {
	if u.User != nil && u.User.Username() != "" {
		return u.User.Username()
	}
	return "root"
}

func password(u *url.URL, opts Options) string {
	if u.User != nil {
		if pw, ok := u.User.Password(); ok {
			return pw
		}
	}
	return opts.Password
}

func remoteBase(u *url.URL) string {
	if u.Path == "" {
		return "."
	}
	return path.Clean(u.Path)
}

// SFTPClient implements Client over an SFTP session. Remote paths are
// resolved relative to the base directory in the host address.
type SFTPClient struct {
	host   model.Host
	base   string
	client *sftp.Client
	closer io.Closer
	opts   Options
}

// NewSFTPClient wraps an established sftp session.
func NewSFTPClient(h model.Host, base string, client *sftp.Client, opts Options) *SFTPClient {
	return &SFTPClient{host: h, base: base, client: client, opts: opts}
}

func (c *SFTPClient) resolve(p string) string {
	return path.Join(c.base, p)
}

func (c *SFTPClient) fail(op string, err error) error {
	return &errs.TransportError{Host: c.host.String(), Op: op, Err: err}
}

// Upload copies the file into the base directory.
func (c *SFTPClient) Upload(ctx context.Context, localPath string) error {
	// #nosec G304 - localPath is the resolved sync target
	f, err := os.Open(localPath)
	if err != nil {
		return &errs.FileSystemError{Op: "open", Path: localPath, Err: err}
	}
	defer f.Close()

	if err := ctx.Err(); err != nil {
		return c.fail("upload", err)
	}
	if err := c.client.MkdirAll(c.base); err != nil {
		return c.fail("upload", err)
	}

	name := filepath.Base(localPath)
	dst, err := c.client.Create(c.resolve(name))
	if err != nil {
		return c.fail("upload", err)
	}

	var size int64 = -1
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}
	logging.Debug("uploading", logging.Host(c.host.String()), logging.Path(localPath))
	if _, err := io.Copy(dst, c.opts.wrap(name, size, f)); err != nil {
		_ = dst.Close()
		return c.fail("upload", err)
	}
	if err := dst.Close(); err != nil {
		return c.fail("upload", err)
	}
	return nil
}

// List reads a directory below the base.
func (c *SFTPClient) List(ctx context.Context, dir string) ([]model.RemoteEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, c.fail("list", err)
	}
	infos, err := c.client.ReadDir(c.resolve(dir))
	if err != nil {
		if isNotExist(err) {
			return nil, &errs.NotFoundError{Host: c.host.String(), Path: dir}
		}
		return nil, c.fail("list", err)
	}
	entries := make([]model.RemoteEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, model.RemoteEntry{
			Name: info.Name(),
			Path: path.Join(dir, info.Name()),
		})
	}
	return entries, nil
}

// Download streams a remote file below the base into w.
func (c *SFTPClient) Download(ctx context.Context, remotePath string, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return c.fail("download", err)
	}
	src, err := c.client.Open(c.resolve(remotePath))
	if err != nil {
		if isNotExist(err) {
			return &errs.NotFoundError{Host: c.host.String(), Path: remotePath}
		}
		return c.fail("download", err)
	}
	defer src.Close()

	var size int64 = -1
	if info, err := src.Stat(); err == nil {
		size = info.Size()
	}
	return copyDownload(w, c.opts.wrap(remotePath, size, src), func(err error) error { return c.fail("download", err) })
}

// Close ends the sftp session and the underlying ssh connection.
func (c *SFTPClient) Close() error {
	err := c.client.Close()
	if c.closer != nil {
		if cerr := c.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist) || errors.Is(err, sftp.ErrSSHFxNoSuchFile)
}
