// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"abalign/internal/annotate"
	"abalign/internal/backend"
	"abalign/internal/cli"
	"abalign/internal/engine"
	"abalign/internal/writers"
)

// ErrJobsFailed is returned by the batch command when at least one job
// ended in the failed state.
var ErrJobsFailed = errors.New("jobs failed")

// Exit codes.
const (
	ExitOK        = 0
	ExitJobFailed = 1
	ExitUsage     = 2
	ExitRuntime   = 3
	ExitCancelled = 130
)

func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)

	root := cli.NewRootCommand(cli.Handlers{
		Align:    runAlign,
		Annotate: runAnnotate,
		PSSM:     runPSSM,
		Batch:    runBatch,
	}, outw, stderr)
	root.SetArgs(argv)

	err := root.ExecuteContext(parent)
	if ferr := outw.Flush(); err == nil && ferr != nil {
		err = ferr
	}
	return exitCode(parent, err, stderr)
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

func exitCode(ctx context.Context, err error, stderr io.Writer) int {
	switch {
	case err == nil, writers.IsBrokenPipe(err):
		return ExitOK
	case ctx.Err() != nil:
		return ExitCancelled
	}
	_, _ = fmt.Fprintln(stderr, "abalign:", err)
	switch {
	case cli.IsUsageError(err):
		return ExitUsage
	case errors.Is(err, ErrJobsFailed):
		return ExitJobFailed
	}
	return ExitRuntime
}

// newEngine wires the backends and, when a numbering command is configured,
// a cached region source.
func newEngine(env *cli.Env) *engine.Engine {
	c := env.Config
	var regions annotate.RegionSource
	if c.Annotation.Command != "" {
		regions = annotate.NewCachedSource(&annotate.ExecSource{
			Path:    c.Annotation.Command,
			Args:    c.Annotation.Args,
			Timeout: c.Tools.Timeout,
			Log:     env.Log,
		}, c.Annotation.CacheSize)
	}
	return engine.New(engine.Config{
		PSSM:   c.PSSMOptions(),
		Scheme: c.Annotation.Scheme,
		Log:    env.Log,
	}, backend.NewRegistry(c.Backend(), env.Log), regions)
}
