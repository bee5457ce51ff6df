// Package transport moves files between the local machine and a device.
//
// The default protocol is plain HTTP against the device's upload service:
//
//	POST /upload            multipart field "files[]"
//	GET  /list?path=<dir>   JSON array of {name, path}
//	GET  /download?path=<p> raw bytes, 404 when missing
//
// Hosts whose address carries an sftp:// or ftp:// scheme are served by the
// matching connector instead. Every failure is returned as an
// *errs.TransportError or *errs.NotFoundError.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/klauern/boxsync/internal/errs"
	"github.com/klauern/boxsync/internal/model"
)

// UploadField is the multipart form field carrying uploaded files.
const UploadField = "files[]"

// Client talks to one host.
type Client interface {
	// Upload sends a local file to the device.
	Upload(ctx context.Context, localPath string) error
	// List returns the entries of a remote directory.
	List(ctx context.Context, dir string) ([]model.RemoteEntry, error)
	// Download streams a remote file into w.
	Download(ctx context.Context, remotePath string, w io.Writer) error
	// Close releases any connection held by the client.
	Close() error
}

// ReaderWrapper decorates a transfer stream, e.g. with a progress bar.
// size is -1 when unknown.
type ReaderWrapper func(name string, size int64, r io.Reader) io.Reader

// Options configures client creation.
type Options struct {
	// Timeout bounds connection setup and each request.
	Timeout time.Duration
	// SSHKeyFile is a private key for sftp hosts.
	SSHKeyFile string
	// Password is used when the address carries none.
	Password string
	// KnownHosts is checked for sftp host keys.
	KnownHosts string
	// InsecureHostKey skips sftp host key verification.
	InsecureHostKey bool
	// Wrap, when set, wraps upload and download streams.
	Wrap ReaderWrapper
}

func (o Options) wrap(name string, size int64, r io.Reader) io.Reader {
	if o.Wrap == nil {
		return r
	}
	return o.Wrap(name, size, r)
}

// localWriter remembers the error returned by the destination so a failed
// copy can be blamed on the right side.
type localWriter struct {
	w   io.Writer
	err error
}

func (lw *localWriter) Write(p []byte) (int, error) {
	n, err := lw.w.Write(p)
	if err != nil {
		lw.err = err
	}
	return n, err
}

// copyDownload streams src into w. A failed write to w is a
// *errs.FileSystemError; any other failure goes through fail.
func copyDownload(w io.Writer, src io.Reader, fail func(error) error) error {
	lw := &localWriter{w: w}
	if _, err := io.Copy(lw, src); err != nil {
		if lw.err != nil {
			return &errs.FileSystemError{Op: "write", Path: writerName(w), Err: lw.err}
		}
		return fail(err)
	}
	return nil
}

func writerName(w io.Writer) string {
	if n, ok := w.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "download destination"
}

// Factory creates clients for the address schemes it accepts.
type Factory interface {
	Accept(u *url.URL) bool
	Create(ctx context.Context, h model.Host, u *url.URL, opts Options) (Client, error)
	Name() string
}

var factories = []Factory{
	&HTTPFactory{},
	&SFTPFactory{},
	&FTPFactory{},
}

// ParseAddress turns a host address into a URL. Bare addresses such as
// "10.0.0.2" or "10.0.0.2:8080" are treated as http.
func ParseAddress(address string) (*url.URL, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, fmt.Errorf("empty address")
	}
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}
	u, err := url.Parse(address)
	if err != nil {
		return nil, err
	}
	if u.Host == "" {
		return nil, fmt.Errorf("address %q has no host", address)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	return u, nil
}

// FactoryFor returns the factory that accepts u, or nil.
func FactoryFor(u *url.URL) Factory {
	for _, f := range factories {
		if f.Accept(u) {
			return f
		}
	}
	return nil
}

// Dialer creates clients for hosts.
type Dialer interface {
	Dial(ctx context.Context, h model.Host) (Client, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context, h model.Host) (Client, error)

// Dial calls f.
func (f DialerFunc) Dial(ctx context.Context, h model.Host) (Client, error) {
	return f(ctx, h)
}

// NewDialer returns a Dialer that picks a factory from each host's address.
func NewDialer(opts Options) Dialer {
	return DialerFunc(func(ctx context.Context, h model.Host) (Client, error) {
		return New(ctx, h, opts)
	})
}

// New creates a client for h.
func New(ctx context.Context, h model.Host, opts Options) (Client, error) {
	u, err := ParseAddress(h.Address)
	if err != nil {
		return nil, &errs.TransportError{Host: h.String(), Op: "parse address", Err: err}
	}
	f := FactoryFor(u)
	if f == nil {
		return nil, &errs.TransportError{Host: h.String(), Op: "connect", Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}
	return f.Create(ctx, h, u, opts)
}

// Scheme returns the transport name used for a host address.
func Scheme(address string) string {
	u, err := ParseAddress(address)
	if err != nil {
		return "invalid"
	}
	if f := FactoryFor(u); f != nil {
		return f.Name()
	}
	return u.Scheme
}
