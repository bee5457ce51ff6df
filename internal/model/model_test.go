package model

import (
	"errors"
	"testing"

	"github.com/klauern/boxsync/internal/errs"
)

func TestNewHostTrims(t *testing.T) {
	h := NewHost("  box ", "\t10.0.0.2 ")
	if h.Name != "box" || h.Address != "10.0.0.2" {
		t.Errorf("NewHost did not trim: %+v", h)
	}
}

func TestHostEqual(t *testing.T) {
	a := Host{Name: "phone", Address: "10.0.0.2"}
	tests := []struct {
		name  string
		other Host
		want  bool
	}{
		{"identical", Host{Name: "phone", Address: "10.0.0.2"}, true},
		{"different name", Host{Name: "pad", Address: "10.0.0.2"}, false},
		{"different address", Host{Name: "phone", Address: "10.0.0.3"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Equal(tt.other); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHostString(t *testing.T) {
	h := Host{Name: "phone", Address: "10.0.0.2"}
	if got := h.String(); got != "phone(10.0.0.2)" {
		t.Errorf("String() = %q", got)
	}
}

func TestHostValidate(t *testing.T) {
	tests := []struct {
		name      string
		host      Host
		wantField string
	}{
		{"valid", Host{Name: "phone", Address: "10.0.0.2"}, ""},
		{"blank name", Host{Name: "  ", Address: "10.0.0.2"}, "name"},
		{"blank address", Host{Name: "phone", Address: "\t"}, "address"},
		{"both blank", Host{}, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.host.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var valErr *errs.ValidationError
			if !errors.As(err, &valErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if valErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", valErr.Field, tt.wantField)
			}
		})
	}
}

func TestMarkerSetMatchedBy(t *testing.T) {
	m := DefaultMarkerSet()
	tests := []struct {
		name    string
		entries []string
		want    bool
	}{
		{"exact", []string{"assets", "scripts", "strings", "config.json", "main.js"}, true},
		{"superset", []string{"assets", "scripts", "strings", "config.json", "main.js", "README.md"}, true},
		{"missing main.js", []string{"assets", "scripts", "strings", "config.json"}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.MatchedBy(tt.entries); got != tt.want {
				t.Errorf("MatchedBy() = %v, want %v", got, tt.want)
			}
		})
	}

	if (MarkerSet{}).MatchedBy([]string{"a"}) {
		t.Error("empty marker set should never match")
	}
}

func TestSyncTargetUploadPath(t *testing.T) {
	s := Script("/w/a.js")
	if s.IsPackage() || s.UploadPath() != "/w/a.js" {
		t.Errorf("unexpected script target: %+v", s)
	}
	p := Package("/w/proj", "/w/proj/.output/proj.box")
	if !p.IsPackage() || p.UploadPath() != "/w/proj/.output/proj.box" {
		t.Errorf("unexpected package target: %+v", p)
	}
}

func TestIsScriptPath(t *testing.T) {
	for p, want := range map[string]bool{
		"/scripts/a.js": true,
		"/scripts/A.JS": true,
		"/project":      false,
		"/x/a.json":     false,
	} {
		if got := IsScriptPath(p); got != want {
			t.Errorf("IsScriptPath(%q) = %v, want %v", p, got, want)
		}
	}
}
