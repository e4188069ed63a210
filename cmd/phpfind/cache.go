package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/phpfind/internal/cache"
)

func (c *cli) newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the cached launcher path",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the cache file location and its content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.cacheStore()
			if err != nil {
				return err
			}

			fmt.Fprintf(c.stdout, "file: %s\n", store.File())
			path, err := store.Load()
			switch {
			case errors.Is(err, cache.ErrNoCachedPath):
				fmt.Fprintln(c.stdout, "path: (none)")
			case err != nil:
				return err
			default:
				fmt.Fprintf(c.stdout, "path: %s\n", path)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete the cached launcher path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.cacheStore()
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(c.stdout, "cleared %s\n", store.File())
			return nil
		},
	})

	return cmd
}
