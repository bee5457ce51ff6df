package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/klauern/boxsync/internal/dispatch"
	"github.com/klauern/boxsync/internal/errs"
	"github.com/klauern/boxsync/internal/progress"
	"github.com/klauern/boxsync/internal/transport"
	"github.com/klauern/boxsync/internal/ui"
)

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:      "sync",
		Usage:     "Upload a script, or the project containing it, to every host",
		ArgsUsage: "<file>",
		Description: `A file inside a project (a directory holding assets/, scripts/, strings/,
   config.json and main.js) is synced as a packaged .box archive of that
   project. Any other file is uploaded as-is.

   Examples:
     boxsync sync hello.js
     boxsync sync todo/scripts/app.js`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			file, err := fileArg(cmd)
			if err != nil {
				return err
			}
			cfg := configFrom(ctx)
			reg, err := newRegistry(cfg, "Choose a host")
			if err != nil {
				return err
			}

			// One progress bar at a time; concurrent uploads log instead.
			var wrap transport.ReaderWrapper
			if reg.Len() <= 1 {
				wrap = progress.Wrapper(os.Stderr)
			}
			results, err := newDispatcher(cfg, reg, wrap).Run(ctx, file)
			if err != nil {
				return err
			}
			return reportResults(out(cmd), results)
		},
	}
}

// fileArg returns the absolute path of the first argument, which must exist.
func fileArg(cmd *cli.Command) (string, error) {
	file := cmd.Args().First()
	if file == "" {
		return "", &errs.ValidationError{Field: "file", Message: "a file is required"}
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", &errs.FileSystemError{Op: "resolve", Path: file, Err: err}
	}
	if _, err := os.Stat(abs); err != nil {
		return "", &errs.FileSystemError{Op: "stat", Path: abs, Err: err}
	}
	return abs, nil
}

// reportResults prints one line per host and fails when any host failed.
func reportResults(w io.Writer, results dispatch.Results) error {
	for _, r := range results {
		detail := "uploaded " + filepath.Base(r.Target.UploadPath())
		if !r.Success() {
			detail = r.Err.Error()
		}
		fmt.Fprintln(w, ui.HostLine(r.Success(), r.Host.String(), detail))
	}
	fmt.Fprintln(w, results.Summary())
	if failed := len(results.Failed()); failed > 0 {
		return fmt.Errorf("%d of %d hosts failed: %w", failed, len(results), results.Err())
	}
	return nil
}
