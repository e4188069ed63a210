package main

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ZebulonRouseFrantzich/phpfind/internal/config"
	"github.com/ZebulonRouseFrantzich/phpfind/internal/logging"
	"github.com/ZebulonRouseFrantzich/phpfind/internal/platform"
)

// errNotFound ends locate with exit status 1 and no further message.
var errNotFound = errors.New("launcher not found")

type globalFlags struct {
	configFile string
	debug      bool
	logFile    string
}

// cli holds the streams and state shared by every command.
type cli struct {
	root   *cobra.Command
	flags  globalFlags
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// isTerminal reports whether stdin is interactive.
	isTerminal func() bool
	detector   platform.Detector

	log    *logging.Logger
	cfg    *config.Config
	origin config.Origin
}

func newCLI(stdin io.Reader, stdout, stderr io.Writer) *cli {
	c := &cli{
		stdin:      stdin,
		stdout:     stdout,
		stderr:     stderr,
		isTerminal: func() bool { return isTerminal(stdin) },
		detector:   platform.NewDetector(),
	}

	root := &cobra.Command{
		Use:           "phpfind",
		Short:         "Locate the PHP launcher on this machine",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.teardown()
		},
	}
	root.SetVersionTemplate(versionString() + "\n")
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.configFile, "config", "", "configuration file (default $"+config.EnvConfig+" or the user config dir)")
	pf.BoolVar(&c.flags.debug, "debug", false, "log debug details to stderr (or set $"+logging.EnvDebug+")")
	pf.StringVar(&c.flags.logFile, "log-file", "", "append JSON logs to this file")

	root.AddCommand(
		c.newLocateCmd(),
		c.newCacheCmd(),
		c.newDefaultsCmd(),
		c.newConfigCmd(),
		c.newVersionCmd(),
	)

	c.root = root
	return c
}

func (c *cli) execute(ctx context.Context) error {
	defer c.teardown()
	return c.root.ExecuteContext(ctx)
}

// setup builds the logger and loads the configuration.
func (c *cli) setup(ctx context.Context) error {
	log, err := logging.New(logging.Options{
		Stderr: c.stderr,
		Debug:  c.flags.debug || logging.DebugFromEnv(),
		File:   c.flags.logFile,
	})
	if err != nil {
		return err
	}
	c.log = log

	cfg, origin, err := config.NewParser(c.detector).Load(ctx, c.flags.configFile)
	if err != nil {
		return err
	}
	c.cfg, c.origin = cfg, origin
	if origin.Found {
		c.log.Debug("loaded configuration", "path", origin.Path)
	}
	return nil
}

func (c *cli) teardown() error {
	if c.log == nil {
		return nil
	}
	err := c.log.Close()
	c.log = nil
	return err
}

func (c *cli) formatError(err error) string {
	return config.FormatError(err, c.flags.debug)
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
