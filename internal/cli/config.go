package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/klauern/boxsync/internal/ui"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect or create the configuration file",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the effective configuration",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := *configFrom(ctx)
					if cfg.Transport.Password != "" {
						cfg.Transport.Password = "********"
					}
					data, err := yaml.Marshal(&cfg)
					if err != nil {
						return fmt.Errorf("failed to render config: %w", err)
					}
					w := out(cmd)
					fmt.Fprintf(w, "# %s\n", cfg.Path())
					_, err = w.Write(data)
					return err
				},
			},
			{
				Name:  "init",
				Usage: "Write a config file with default values",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := configFrom(ctx)
					if cfg.Exists() && !cmd.Bool("force") {
						fmt.Fprintln(out(cmd), ui.StatusSkipped("config already exists at "+cfg.Path()))
						return nil
					}
					if err := cfg.Save(); err != nil {
						return err
					}
					fmt.Fprintln(out(cmd), ui.StatusSuccess("wrote "+cfg.Path()))
					return nil
				},
			},
			{
				Name:  "path",
				Usage: "Print the config file path",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Fprintln(out(cmd), configFrom(ctx).Path())
					return nil
				},
			},
		},
	}
}
