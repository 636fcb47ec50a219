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
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd(defaultApp()).ExecuteContext(ctx)
	stop()
	if code := report(ctx, err, os.Stdout, os.Stderr); code != 0 {
		os.Exit(code)
	}
}

// report prints the outcome of a run and returns the process exit status.
// An interrupted run gets a termination notice on stdout, other failures
// their error on stderr.
func report(ctx context.Context, err error, stdout, stderr io.Writer) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		fmt.Fprintln(stdout, "Interrupt caught, terminating the session...")
	default:
		fmt.Fprintln(stderr, err)
	}
	return 1
}
