package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/klauern/boxsync/internal/config"
	"github.com/klauern/boxsync/internal/logging"
	"github.com/klauern/boxsync/internal/ui"
	"github.com/klauern/boxsync/internal/watch"
)

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Sync a script every time it is saved",
		ArgsUsage: "<file.js>",
		Description: `Saves are only synced while sync.auto_upload is true, unless --force is given.

   Examples:
     boxsync watch hello.js
     boxsync watch --force todo/main.js`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Sync on save even when sync.auto_upload is off",
			},
		},
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
			d := newDispatcher(cfg, reg, nil)
			w := out(cmd)
			force := cmd.Bool("force")

			watcher, err := watch.New(func(ctx context.Context, path string) error {
				results, err := d.Run(ctx, path)
				if err != nil {
					fmt.Fprintln(w, ui.StatusError(err.Error()))
					return err
				}
				return reportResults(w, results)
			},
				watch.WithDebounce(cfg.Sync.Debounce),
				watch.WithEnabled(func() bool { return force || autoUpload(cfg) }),
			)
			if err != nil {
				return err
			}
			defer watcher.Close()

			if _, err := watcher.Watch(file); err != nil {
				return err
			}
			if !force && !cfg.Sync.AutoUpload {
				fmt.Fprintln(w, ui.StatusWarning("sync.auto_upload is off; saves are ignored until it is turned on (or use --force)"))
			}
			fmt.Fprintf(w, "watching %s (ctrl+c to stop)\n", ui.Info(file))

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

// autoUpload re-reads sync.auto_upload so toggling it takes effect while a
// watch is running. A config that no longer loads keeps the startup value.
func autoUpload(cfg *config.Config) bool {
	fresh, err := config.LoadFromPath(cfg.Path())
	if err != nil {
		logging.Warn("reload config", logging.Path(cfg.Path()), logging.Err(err))
		return cfg.Sync.AutoUpload
	}
	return fresh.Sync.AutoUpload
}
