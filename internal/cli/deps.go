package cli

import (
	"context"

	"github.com/klauern/boxsync/internal/config"
	"github.com/klauern/boxsync/internal/dispatch"
	"github.com/klauern/boxsync/internal/download"
	"github.com/klauern/boxsync/internal/errs"
	"github.com/klauern/boxsync/internal/host"
	"github.com/klauern/boxsync/internal/model"
	"github.com/klauern/boxsync/internal/target"
	"github.com/klauern/boxsync/internal/transport"
	"github.com/klauern/boxsync/internal/ui/tui"
)

func transportOptions(cfg *config.Config, wrap transport.ReaderWrapper) transport.Options {
	return transport.Options{
		Timeout:         cfg.Transport.Timeout,
		SSHKeyFile:      cfg.Transport.SSHKeyFile,
		Password:        cfg.Transport.Password,
		KnownHosts:      cfg.Transport.KnownHosts,
		InsecureHostKey: cfg.Transport.InsecureHostKey,
		Wrap:            wrap,
	}
}

func newResolver(cfg *config.Config) *target.Resolver {
	return target.NewResolver(
		target.WithMarkers(cfg.MarkerSet()),
		target.WithOutputDir(cfg.Sync.OutputDir),
	)
}

func newRegistry(cfg *config.Config, title string) (*host.Registry, error) {
	return host.NewRegistry(cfg.HostStore(), hostChooser(title))
}

func newDispatcher(cfg *config.Config, reg *host.Registry, wrap transport.ReaderWrapper) *dispatch.Dispatcher {
	return dispatch.New(reg, newResolver(cfg), transport.NewDialer(transportOptions(cfg, wrap)),
		dispatch.WithConcurrency(cfg.Sync.Concurrency),
		dispatch.WithOverride(cfg.HostStore().Override),
	)
}

// hostChooser shows a picker on a terminal and fails otherwise.
func hostChooser(title string) host.Chooser {
	return host.ChooserFunc(func(ctx context.Context, hosts []model.Host) (model.Host, bool, error) {
		if !interactive() {
			return model.Host{}, false, &errs.ValidationError{Field: "host", Message: "no terminal to choose from; name the host explicitly"}
		}
		return tui.HostChooser(title).Choose(ctx, hosts)
	})
}

// entryChooser shows a picker on a terminal and fails otherwise.
func entryChooser(title string) download.EntryChooser {
	return download.EntryChooserFunc(func(ctx context.Context, entries []model.RemoteEntry) (model.RemoteEntry, bool, error) {
		if !interactive() {
			return model.RemoteEntry{}, false, &errs.ValidationError{Field: "remote-path", Message: "no terminal to choose from; pass the remote path"}
		}
		return tui.EntryChooser(title).ChooseEntry(ctx, entries)
	})
}
