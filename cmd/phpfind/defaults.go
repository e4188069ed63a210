package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/phpfind/internal/finder"
)

func (c *cli) newDefaultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "Show the detected OS and the default locations checked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := c.detector.Detect(cmd.Context())
			if err != nil {
				return fmt.Errorf("detect platform: %w", err)
			}

			fmt.Fprintf(c.stdout, "os:     %s\n", info.Name)
			if info.Platform != "" {
				fmt.Fprintf(c.stdout, "host:   %s %s\n", info.Platform, info.Version)
			}
			fmt.Fprintf(c.stdout, "family: %s\n", info.Family())
			fmt.Fprintln(c.stdout, "locations:")

			src := finder.DefaultsSource{Table: finder.DefaultLocations(), Family: info.Family(), Extra: c.cfg.Defaults}
			for _, loc := range src.Candidates(cmd.Context()) {
				fmt.Fprintf(c.stdout, "  %s\n", loc)
			}
			return nil
		},
	}
}
