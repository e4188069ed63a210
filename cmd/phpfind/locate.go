package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/phpfind/internal/finder"
)

func (c *cli) newLocateCmd() *cobra.Command {
	var (
		noPrompt    bool
		forcePrompt bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Print the path of the PHP launcher",
		Long: `Locate tries the cached path, then the php command on PATH, then the
default install locations for this OS. If none of them is a working PHP
launcher and stdin is a terminal, it asks for the location and caches the
answer. The path is printed on stdout; exit status 1 means nothing was found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.components(cmd.Context())
			if err != nil {
				return err
			}

			allowPrompt := c.isTerminal()
			if forcePrompt {
				allowPrompt = true
			}
			if noPrompt {
				allowPrompt = false
			}

			resolver := finder.NewResolver(finder.Config{
				Sources:   p.sources(c),
				Validator: p.validator,
				Prompter: finder.NewPrompter(finder.PrompterConfig{
					In:        c.stdin,
					Out:       c.stdout,
					Validator: p.validator,
					Store:     p.store,
					Name:      p.target.DisplayName(),
					Logger:    c.log.Logger,
				}),
				Logger: c.log.Logger,
			})

			res := resolver.ResolveDetailed(cmd.Context(), allowPrompt)
			if verbose {
				for _, a := range res.Attempts {
					if err := a.Verdict.Err(); err != nil {
						fmt.Fprintf(c.stderr, "%-8s %v\n", a.Source, err)
						continue
					}
					fmt.Fprintf(c.stderr, "%-8s %s: %s\n", a.Source, a.Verdict.Candidate, a.Verdict.Outcome)
				}
				if res.Found && res.Source == finder.SourcePrompt {
					fmt.Fprintf(c.stderr, "%-8s %s: %s\n", res.Source, res.Path, "accepted")
				}
			}

			if !res.Found {
				fmt.Fprintf(c.stderr, "%s launcher not found\n", p.target.DisplayName())
				return errNotFound
			}
			fmt.Fprintln(c.stdout, res.Path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noPrompt, "no-prompt", false, "never ask for the location")
	cmd.Flags().BoolVar(&forcePrompt, "prompt", false, "ask for the location even when stdin is not a terminal")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show every candidate checked")
	cmd.MarkFlagsMutuallyExclusive("no-prompt", "prompt")

	return cmd
}
