package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/phpfind/internal/config"
)

func (c *cli) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the phpfind configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as Lua",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.origin.Found {
				fmt.Fprintf(c.stdout, "-- loaded from %s\n", c.origin.Path)
			} else {
				fmt.Fprintln(c.stdout, "-- no configuration file; built-in defaults")
			}
			fmt.Fprint(c.stdout, config.NewGenerator().Generate(c.cfg.Effective()))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the default configuration file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.DefaultPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(c.stdout, path)
			return nil
		},
	})

	return cmd
}
