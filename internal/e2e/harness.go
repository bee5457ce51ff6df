// Package e2e provides testing infrastructure for end-to-end CLI tests:
// an isolated config home, captured output, and fixture helpers.
package e2e

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauern/boxsync/internal/cli"
)

// Result contains the outcome of running a CLI command.
type Result struct {
	Stdout string
	Err    error
	// ExitCode is the inferred exit code (0 for success, 1 for error).
	ExitCode int
}

// Success returns true if the command completed without error.
func (r *Result) Success() bool {
	return r.Err == nil
}

// Harness runs CLI commands against an isolated BOXSYNC_HOME.
type Harness struct {
	t       *testing.T
	homeDir string
}

// NewHarness creates a harness with a fresh config home and no host
// override leaking in from the environment.
func NewHarness(t *testing.T) *Harness {
	t.Helper()
	h := &Harness{t: t, homeDir: t.TempDir()}
	t.Setenv("BOXSYNC_HOME", h.homeDir)
	t.Setenv("BOXSYNC_HOSTS_OVERRIDE", "")
	t.Setenv("NO_COLOR", "1")
	return h
}

// HomeDir returns the isolated config directory.
func (h *Harness) HomeDir() string {
	return h.homeDir
}

// ConfigPath returns the config file commands read and write.
func (h *Harness) ConfigPath() string {
	return filepath.Join(h.homeDir, "config.yaml")
}

// Run executes a CLI command and captures stdout.
func (h *Harness) Run(args ...string) *Result {
	h.t.Helper()

	if len(args) == 0 || args[0] != "boxsync" {
		args = append([]string{"boxsync"}, args...)
	}

	oldStdout := os.Stdout
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		h.t.Fatalf("failed to create stdout pipe: %v", err)
	}
	os.Stdout = stdoutW

	// Drain concurrently so large output cannot fill the pipe and block.
	var stdoutBuf bytes.Buffer
	var copyErr error
	copyDone := make(chan struct{})
	go func() {
		defer close(copyDone)
		_, copyErr = io.Copy(&stdoutBuf, stdoutR)
	}()

	cmdErr := cli.Run(context.Background(), args)

	if err := stdoutW.Close(); err != nil {
		h.t.Fatalf("failed to close stdout pipe writer: %v", err)
	}
	os.Stdout = oldStdout

	<-copyDone
	if copyErr != nil {
		h.t.Fatalf("failed to read captured stdout: %v", copyErr)
	}

	exitCode := 0
	if cmdErr != nil {
		exitCode = 1
	}
	return &Result{
		Stdout:   stdoutBuf.String(),
		Err:      cmdErr,
		ExitCode: exitCode,
	}
}
