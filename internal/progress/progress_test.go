package progress

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/klauern/boxsync/internal/ui"
)

func TestNew_DisabledForNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	b := New(Options{Size: 10, Description: "upload", Writer: &buf})

	if b.Enabled() {
		t.Fatal("bar should be disabled for a buffer")
	}
	if err := b.Add64(5); err != nil {
		t.Errorf("Add64 on disabled bar: %v", err)
	}
	if err := b.Finish(); err != nil {
		t.Errorf("Finish on disabled bar: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("disabled bar wrote %q", buf.String())
	}
}

func TestReader_PassesBytesThrough(t *testing.T) {
	ui.EnableColors()
	var out bytes.Buffer
	b := New(Options{Size: 11, Description: "hello.js", Writer: &out, Force: true})
	if !b.Enabled() {
		t.Fatal("forced bar should be enabled")
	}

	got, err := io.ReadAll(b.Reader(strings.NewReader("hello world")))
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(got) != "hello world" {
		t.Errorf("reader changed content: %q", got)
	}
	if !strings.Contains(out.String(), "hello.js") {
		t.Errorf("expected description in output, got %q", out.String())
	}
}

func TestWrapper_NilForNonTerminal(t *testing.T) {
	if w := Wrapper(&bytes.Buffer{}); w != nil {
		t.Error("expected nil wrapper for a non-terminal writer")
	}
}

func TestShouldShowProgress_ColorsDisabled(t *testing.T) {
	ui.DisableColors()
	defer ui.EnableColors()

	if shouldShowProgress(&bytes.Buffer{}) {
		t.Error("progress should be off without colors")
	}
}
