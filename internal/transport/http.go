package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/klauern/boxsync/internal/errs"
	"github.com/klauern/boxsync/internal/logging"
	"github.com/klauern/boxsync/internal/model"
)

// HTTPFactory creates clients for http and https addresses.
type HTTPFactory struct{}

func (f *HTTPFactory) Accept(u *url.URL) bool { return u.Scheme == "http" || u.Scheme == "https" }

func (f *HTTPFactory) Name() string { return "http" }

func (f *HTTPFactory) Create(_ context.Context, h model.Host, u *url.URL, opts Options) (Client, error) {
	return NewHTTPClient(h, u, opts), nil
}

// HTTPClient implements Client against the device's HTTP service.
type HTTPClient struct {
	host   model.Host
	base   *url.URL
	client *http.Client
	opts   Options
}

// NewHTTPClient creates an HTTP client rooted at base.
func NewHTTPClient(h model.Host, base *url.URL, opts Options) *HTTPClient {
	return &HTTPClient{
		host:   h,
		base:   base,
		client: &http.Client{Timeout: opts.Timeout},
		opts:   opts,
	}
}

func (c *HTTPClient) endpoint(name string, query url.Values) string {
	u := c.base.JoinPath(name)
	u.RawQuery = query.Encode()
	return u.String()
}

func (c *HTTPClient) fail(op string, err error) error {
	return &errs.TransportError{Host: c.host.String(), Op: op, Err: err}
}

// Upload streams the file as multipart form data to /upload.
func (c *HTTPClient) Upload(ctx context.Context, localPath string) error {
	// #nosec G304 - localPath is the resolved sync target
	f, err := os.Open(localPath)
	if err != nil {
		return &errs.FileSystemError{Op: "open", Path: localPath, Err: err}
	}
	defer f.Close()

	var size int64 = -1
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}
	name := filepath.Base(localPath)
	src := c.opts.wrap(name, size, f)

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile(UploadField, name)
		if err == nil {
			_, err = io.Copy(part, src)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("upload", nil), pr)
	if err != nil {
		_ = pr.Close()
		return c.fail("upload", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	logging.Debug("uploading", logging.Host(c.host.String()), logging.Path(localPath))
	resp, err := c.client.Do(req)
	if err != nil {
		_ = pr.Close()
		return c.fail("upload", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.fail("upload", fmt.Errorf("unexpected status %s", resp.Status))
	}
	return nil
}

// List fetches /list?path=dir.
func (c *HTTPClient) List(ctx context.Context, dir string) ([]model.RemoteEntry, error) {
	resp, err := c.get(ctx, "list", dir)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var entries []model.RemoteEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, c.fail("list", fmt.Errorf("decode listing: %w", err))
	}
	return entries, nil
}

// Download streams /download?path=remotePath into w.
func (c *HTTPClient) Download(ctx context.Context, remotePath string, w io.Writer) error {
	resp, err := c.get(ctx, "download", remotePath)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	src := c.opts.wrap(remotePath, resp.ContentLength, resp.Body)
	return copyDownload(w, src, func(err error) error { return c.fail("download", err) })
}

// get issues a GET and maps 404 to NotFoundError and other non-2xx
// statuses to TransportError. The caller closes the body on success.
func (c *HTTPClient) get(ctx context.Context, op, p string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(op, url.Values{"path": {p}}), nil)
	if err != nil {
		return nil, c.fail(op, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, c.fail(op, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, &errs.NotFoundError{Host: c.host.String(), Path: p}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		resp.Body.Close()
		return nil, c.fail(op, fmt.Errorf("unexpected status %s", resp.Status))
	}
	return resp, nil
}

// Close is a no-op; HTTP connections are pooled by net/http.
func (c *HTTPClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
