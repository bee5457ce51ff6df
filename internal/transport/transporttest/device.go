// Package transporttest provides an in-process device speaking the boxsync
// HTTP protocol, for tests.
package transporttest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/klauern/boxsync/internal/model"
)

// Upload is one file received by a Device.
type Upload struct {
	Field    string
	Filename string
	Content  []byte
}

// Device is a fake remote device backed by httptest.Server.
type Device struct {
	server *httptest.Server

	mu      sync.Mutex
	uploads []Upload
	files   map[string][]byte
	dirs    map[string][]model.RemoteEntry

	failUploads bool
}

// NewDevice starts a device and stops it when the test ends.
func NewDevice(t testing.TB) *Device {
	t.Helper()
	d := &Device{
		files: make(map[string][]byte),
		dirs:  make(map[string][]model.RemoteEntry),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/upload", d.handleUpload)
	mux.HandleFunc("/list", d.handleList)
	mux.HandleFunc("/download", d.handleDownload)
	d.server = httptest.NewServer(mux)
	t.Cleanup(d.server.Close)
	return d
}

// URL returns the device base URL.
func (d *Device) URL() string {
	return d.server.URL
}

// Address returns the device address without a scheme, as a user would type it.
func (d *Device) Address() string {
	return strings.TrimPrefix(d.server.URL, "http://")
}

// Host returns a host entry pointing at the device.
func (d *Device) Host(name string) model.Host {
	return model.Host{Name: name, Address: d.Address()}
}

// Uploads returns the files received so far.
func (d *Device) Uploads() []Upload {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Upload(nil), d.uploads...)
}

// AddFile makes a file available for download.
func (d *Device) AddFile(path string, content []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.files[path] = content
}

// AddDir sets the listing returned for a directory.
func (d *Device) AddDir(path string, entries ...model.RemoteEntry) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dirs[path] = entries
}

// FailUploads makes every subsequent upload answer 500.
func (d *Device) FailUploads() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failUploads = true
}

func (d *Device) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	d.mu.Lock()
	fail := d.failUploads
	d.mu.Unlock()
	if fail {
		http.Error(w, "device busy", http.StatusInternalServerError)
		return
	}

	mr, err := r.MultipartReader()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		content, err := io.ReadAll(part)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		d.mu.Lock()
		d.uploads = append(d.uploads, Upload{
			Field:    part.FormName(),
			Filename: part.FileName(),
			Content:  content,
		})
		d.mu.Unlock()
	}
	w.WriteHeader(http.StatusOK)
}

func (d *Device) handleList(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	entries, ok := d.dirs[r.URL.Query().Get("path")]
	d.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(entries)
}

func (d *Device) handleDownload(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	content, ok := d.files[r.URL.Query().Get("path")]
	d.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(content)
}
