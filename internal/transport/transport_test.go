package transport

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/klauern/boxsync/internal/errs"
	"github.com/klauern/boxsync/internal/model"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		address    string
		wantScheme string
		wantHost   string
		wantErr    bool
	}{
		{"10.0.0.2", "http", "10.0.0.2", false},
		{" 10.0.0.2:8080 ", "http", "10.0.0.2:8080", false},
		{"HTTPS://box.local", "https", "box.local", false},
		{"sftp://pi@10.0.0.3/apps", "sftp", "10.0.0.3", false},
		{"ftp://10.0.0.4:2121", "ftp", "10.0.0.4:2121", false},
		{"", "", "", true},
		{"http://", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			u, err := ParseAddress(tt.address)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.address)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAddress failed: %v", err)
			}
			if u.Scheme != tt.wantScheme || u.Host != tt.wantHost {
				t.Errorf("got scheme=%q host=%q", u.Scheme, u.Host)
			}
		})
	}
}

func TestScheme(t *testing.T) {
	for address, want := range map[string]string{
		"10.0.0.2":         "http",
		"https://x":        "http",
		"sftp://pi@x/apps": "sftp",
		"ftp://x":          "ftp",
		"gopher://x":       "gopher",
		"":                 "invalid",
	} {
		if got := Scheme(address); got != want {
			t.Errorf("Scheme(%q) = %q, want %q", address, got, want)
		}
	}
}

func TestNew_UnsupportedScheme(t *testing.T) {
	_, err := New(context.Background(), model.Host{Name: "g", Address: "gopher://x"}, Options{})
	var trErr *errs.TransportError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestNew_InvalidAddress(t *testing.T) {
	_, err := New(context.Background(), model.Host{Name: "g", Address: ""}, Options{})
	var trErr *errs.TransportError
	if !errors.As(err, &trErr) || trErr.Op != "parse address" {
		t.Fatalf("expected parse TransportError, got %v", err)
	}
}

func TestSFTPFactory_RequiresCredentials(t *testing.T) {
	u, _ := ParseAddress("sftp://pi@127.0.0.1:1/apps")
	_, err := (&SFTPFactory{}).Create(context.Background(), model.Host{Name: "pi", Address: u.String()}, u, Options{InsecureHostKey: true})
	var trErr *errs.TransportError
	if !errors.As(err, &trErr) || trErr.Op != "connect" {
		t.Fatalf("expected connect TransportError, got %v", err)
	}
}

func TestFTPFactory_ConnectFailure(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	_ = l.Close()

	_, err = New(context.Background(), model.Host{Name: "nas", Address: "ftp://" + addr + "/apps"}, Options{Timeout: time.Second})
	var trErr *errs.TransportError
	if !errors.As(err, &trErr) || trErr.Op != "connect" {
		t.Fatalf("expected connect TransportError, got %v", err)
	}
}
