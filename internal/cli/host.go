package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/klauern/boxsync/internal/errs"
	"github.com/klauern/boxsync/internal/host"
	"github.com/klauern/boxsync/internal/model"
	"github.com/klauern/boxsync/internal/transport"
	"github.com/klauern/boxsync/internal/ui"
	"github.com/klauern/boxsync/internal/ui/tui"
)

const abandoned = "operation abandoned"

func hostCommand() *cli.Command {
	return &cli.Command{
		Name:  "host",
		Usage: "Manage the devices files are synced to",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Register a device",
				ArgsUsage: "[name] [address]",
				Description: `Addresses without a scheme are reached over HTTP. Use sftp://user@host/dir
   or ftp://user@host/dir for devices that expose those instead.

   Examples:
     boxsync host add ipad 10.0.0.2:8080
     boxsync host add pi sftp://pi@10.0.0.4/home/pi/apps`,
				Action: runHostAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a device",
				ArgsUsage: "[name]",
				Action:    runHostRemove,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List registered devices",
				Action:  runHostList,
			},
			{
				Name:   "choose",
				Usage:  "Pick a device interactively and print it",
				Action: runHostChoose,
			},
			{
				Name:      "set",
				Usage:     "Set the address used when no device is registered",
				ArgsUsage: "<address>",
				Action:    runHostSet,
			},
			{
				Name:   "unset",
				Usage:  "Clear the fallback address",
				Action: runHostUnset,
			},
		},
	}
}

func runHostAdd(ctx context.Context, cmd *cli.Command) error {
	cfg := configFrom(ctx)
	name := strings.TrimSpace(cmd.Args().Get(0))
	address := strings.TrimSpace(cmd.Args().Get(1))

	if (name == "" || address == "") && interactive() {
		res, err := tui.RunHostForm(name, address)
		if err != nil {
			return err
		}
		if !res.Submitted {
			fmt.Fprintln(out(cmd), ui.StatusWarning(abandoned))
			return nil
		}
		name, address = res.Name, res.Address
	}

	reg, err := newRegistry(cfg, "Choose a host")
	if err != nil {
		return err
	}
	h, err := reg.Add(name, address)
	if err != nil {
		return err
	}
	fmt.Fprintln(out(cmd), ui.StatusSuccess("added "+h.String()))
	return nil
}

func runHostRemove(ctx context.Context, cmd *cli.Command) error {
	cfg := configFrom(ctx)
	reg, err := newRegistry(cfg, "Remove which host?")
	if err != nil {
		return err
	}

	h, ok, err := hostByNameOrChoice(ctx, reg, cmd.Args().First())
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(out(cmd), ui.StatusWarning(abandoned))
		return nil
	}

	removed, err := reg.Remove(h)
	if err != nil {
		return err
	}
	if !removed {
		fmt.Fprintln(out(cmd), ui.StatusSkipped(h.String()+" is not registered"))
		return nil
	}
	fmt.Fprintln(out(cmd), ui.StatusSuccess("removed "+h.String()))
	return nil
}

// hostByNameOrChoice looks up name, or asks the user when name is empty.
func hostByNameOrChoice(ctx context.Context, reg *host.Registry, name string) (model.Host, bool, error) {
	if name == "" {
		if reg.Len() == 0 {
			return model.Host{}, false, errs.NoHostsConfigured()
		}
		return reg.Choose(ctx)
	}
	h, ok := reg.FindByName(name)
	if !ok {
		return model.Host{}, false, &errs.ValidationError{Field: "name", Message: fmt.Sprintf("no host named %q", name)}
	}
	return h, true, nil
}

func runHostList(ctx context.Context, cmd *cli.Command) error {
	cfg := configFrom(ctx)
	w := out(cmd)
	hosts := cfg.HostStore()
	list, err := hosts.Load()
	if err != nil {
		return err
	}

	fmt.Fprintln(w, ui.Header(ui.Title("configured hosts")))
	if len(list) == 0 {
		fmt.Fprintln(w, ui.Dim("  (none)"))
	}
	width := 0
	for _, h := range list {
		width = max(width, len(h.Name))
	}
	for _, h := range list {
		fmt.Fprintf(w, "  %-*s  %s  %s\n", width, h.Name, h.Address, ui.Dim(transport.Scheme(h.Address)))
	}
	if o, ok := hosts.Override(); ok {
		note := "fallback"
		if len(list) > 0 {
			note = "fallback, unused while hosts are registered"
		}
		fmt.Fprintf(w, "\n  %s %s %s\n", ui.Bold("override:"), o.Address, ui.Dim("("+note+")"))
	}
	return nil
}

func runHostChoose(ctx context.Context, cmd *cli.Command) error {
	reg, err := newRegistry(configFrom(ctx), "Choose a host")
	if err != nil {
		return err
	}
	if reg.Len() == 0 {
		return errs.NoHostsConfigured()
	}
	h, ok, err := reg.Choose(ctx)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(out(cmd), ui.StatusWarning(abandoned))
		return nil
	}
	fmt.Fprintln(out(cmd), h.String())
	return nil
}

func runHostSet(ctx context.Context, cmd *cli.Command) error {
	cfg := configFrom(ctx)
	address := strings.TrimSpace(cmd.Args().First())
	if address == "" {
		return &errs.ValidationError{Field: "address", Message: "address cannot be empty"}
	}
	if _, err := transport.ParseAddress(address); err != nil {
		return &errs.ValidationError{Field: "address", Message: err.Error()}
	}
	cfg.Hosts.Override = address
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Fprintln(out(cmd), ui.StatusSuccess("override set to "+address))
	return nil
}

func runHostUnset(ctx context.Context, cmd *cli.Command) error {
	cfg := configFrom(ctx)
	if cfg.Hosts.Override == "" {
		fmt.Fprintln(out(cmd), ui.StatusSkipped("no override set"))
		return nil
	}
	cfg.Hosts.Override = ""
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Fprintln(out(cmd), ui.StatusSuccess("override cleared"))
	return nil
}
