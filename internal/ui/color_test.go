package ui

import (
	"testing"
)

func TestStatusFunctions(t *testing.T) {
	DisableColors()
	defer EnableColors()

	tests := []struct {
		name  string
		fn    func(string) string
		input string
		want  string
	}{
		{"StatusSuccess empty", StatusSuccess, "", SymbolSuccess},
		{"StatusSuccess with msg", StatusSuccess, "uploaded", SymbolSuccess + " uploaded"},
		{"StatusError empty", StatusError, "", SymbolError},
		{"StatusError with msg", StatusError, "refused", SymbolError + " refused"},
		{"StatusWarning with msg", StatusWarning, "abandoned", SymbolWarning + " abandoned"},
		{"StatusSkipped with msg", StatusSkipped, "skip", SymbolSkipped + " skip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.input); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHostLine(t *testing.T) {
	DisableColors()
	defer EnableColors()

	tests := []struct {
		ok     bool
		host   string
		detail string
		want   string
	}{
		{true, "box(10.0.0.2)", "uploaded hello.js", "✓ box(10.0.0.2): uploaded hello.js"},
		{false, "pi(10.0.0.3)", "connection refused", "✗ pi(10.0.0.3): connection refused"},
		{true, "box(10.0.0.2)", "", "✓ box(10.0.0.2)"},
	}
	for _, tt := range tests {
		if got := HostLine(tt.ok, tt.host, tt.detail); got != tt.want {
			t.Errorf("HostLine(%v, %q, %q) = %q, want %q", tt.ok, tt.host, tt.detail, got, tt.want)
		}
	}
}

func TestTitle(t *testing.T) {
	if got := Title("configured hosts"); got != "Configured Hosts" {
		t.Errorf("Title() = %q", got)
	}
}

func TestColorToggle(t *testing.T) {
	initial := IsColorEnabled()

	DisableColors()
	if IsColorEnabled() {
		t.Error("expected colors to be disabled")
	}

	EnableColors()
	if !IsColorEnabled() {
		t.Error("expected colors to be enabled")
	}

	if !initial {
		DisableColors()
	}
}
