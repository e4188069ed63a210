// Command phpfind locates the PHP launcher on this machine and prints its path.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cli := newCLI(stdin, stdout, stderr)
	cli.root.SetArgs(args)

	if err := cli.execute(ctx); err != nil {
		if errors.Is(err, errNotFound) {
			return 1
		}
		fmt.Fprintf(stderr, "Error: %s\n", cli.formatError(err))
		return 1
	}
	return 0
}
