// Package appshell is the process boundary shared by the commands: it turns
// SIGINT/SIGTERM into context cancellation and the run result into an exit
// status.
package appshell

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// CancelledCode is the exit status of an interrupted run.
const CancelledCode = 130

// RunFunc is the signature of app.RunContext.
type RunFunc func(ctx context.Context, argv []string, stdout, stderr io.Writer) int

// Main runs fn with os.Args and exits.
func Main(fn RunFunc) {
	os.Exit(run(fn, os.Args[1:], os.Stdout, os.Stderr))
}

func run(fn RunFunc, argv []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(argv) == 0 {
		argv = []string{"--help"}
	}
	code := fn(ctx, argv, stdout, stderr)
	// an interrupted run never reports success
	if ctx.Err() != nil && code == 0 {
		code = CancelledCode
	}
	return code
}
