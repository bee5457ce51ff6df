package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/klauern/boxsync/internal/config"
	"github.com/klauern/boxsync/internal/download"
	"github.com/klauern/boxsync/internal/errs"
	"github.com/klauern/boxsync/internal/model"
	"github.com/klauern/boxsync/internal/progress"
	"github.com/klauern/boxsync/internal/transport"
	"github.com/klauern/boxsync/internal/ui"
)

func downloadCommand() *cli.Command {
	return &cli.Command{
		Name:      "download",
		Aliases:   []string{"pull"},
		Usage:     "Download a script or project from a host",
		ArgsUsage: "[remote-path]",
		Description: `Without a remote path, the remote directory is listed and one entry is
   picked interactively. Scripts (.js) are saved as-is; anything else is a
   project and is saved with a .zip suffix.

   Examples:
     boxsync download --host ipad /hello.js
     boxsync download --dest ./todo /todo`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Name of the host to download from",
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Remote directory to list when no remote path is given",
				Value: "/",
			},
			&cli.StringFlag{
				Name:  "dest",
				Usage: "Local destination (default: the remote name in the current directory)",
			},
		},
		Action: runDownload,
	}
}

func runDownload(ctx context.Context, cmd *cli.Command) error {
	cfg := configFrom(ctx)
	w := out(cmd)

	h, ok, err := downloadHost(ctx, cfg, cmd.String("host"))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(w, ui.StatusWarning(abandoned))
		return nil
	}

	resolver := download.NewResolver(transport.NewDialer(transportOptions(cfg, progress.Wrapper(os.Stderr))))

	remote := cmd.Args().First()
	if remote == "" {
		entry, ok, err := resolver.Select(ctx, h, cmd.String("dir"), entryChooser("Download which file?"))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(w, ui.StatusWarning(abandoned))
			return nil
		}
		remote = entry.Path
	}

	dest := cmd.String("dest")
	if dest == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return &errs.FileSystemError{Op: "getwd", Path: ".", Err: err}
		}
		dest = download.DefaultDest(remote, cwd)
	}

	saved, err := resolver.Fetch(ctx, h, remote, dest)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, ui.StatusSuccess("downloaded "+download.Describe(h, remote, saved)))
	return nil
}

// downloadHost picks the host named by --host, the only registered host,
// the override, or asks the user.
func downloadHost(ctx context.Context, cfg *config.Config, name string) (model.Host, bool, error) {
	reg, err := newRegistry(cfg, "Download from which host?")
	if err != nil {
		return model.Host{}, false, err
	}
	switch {
	case name != "":
		return hostByNameOrChoice(ctx, reg, name)
	case reg.Len() == 1:
		return reg.List()[0], true, nil
	case reg.Len() == 0:
		if o, ok := cfg.HostStore().Override(); ok {
			return o, true, nil
		}
		return model.Host{}, false, errs.NoHostsConfigured()
	}
	return reg.Choose(ctx)
}
