// Package toolexec runs external alignment and numbering tools with a hard
// timeout. Every failure is reported as a *ToolError.
package toolexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultTimeout bounds a single tool invocation when none is configured.
const DefaultTimeout = 5 * time.Minute

// stderrTail caps how much tool stderr is kept on a ToolError.
const stderrTail = 2048

// ToolError reports an external tool that failed, timed out or could not start.
type ToolError struct {
	Tool   string
	Err    error
	Stderr string
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

// Timeout reports whether the tool was killed by its deadline.
func (e *ToolError) Timeout() bool { return errors.Is(e.Err, context.DeadlineExceeded) }

// Command describes one invocation.
type Command struct {
	Name    string // label used in errors and logs
	Path    string // binary path or name resolved through $PATH
	Args    []string
	Stdin   io.Reader
	Timeout time.Duration
	Dir     string
}

// Run executes c and returns its stdout.
func Run(ctx context.Context, c Command, log logrus.FieldLogger) ([]byte, error) {
	name := c.Name
	if name == "" {
		name = c.Path
	}
	if log == nil {
		log = discard()
	}
	bin, err := exec.LookPath(c.Path)
	if err != nil {
		return nil, &ToolError{Tool: name, Err: err}
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = c.Stdin
	cmd.WaitDelay = time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.WithFields(logrus.Fields{"tool": name, "args": strings.Join(c.Args, " ")}).Debug("running external tool")
	start := time.Now()
	runErr := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		runErr = ctxErr
	}
	if runErr != nil {
		te := &ToolError{Tool: name, Err: runErr, Stderr: tail(stderr.String())}
		log.WithFields(logrus.Fields{"tool": name, "elapsed": time.Since(start)}).Warn(te.Error())
		return nil, te
	}
	log.WithFields(logrus.Fields{"tool": name, "elapsed": time.Since(start)}).Debug("external tool finished")
	return stdout.Bytes(), nil
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > stderrTail {
		s = s[len(s)-stderrTail:]
	}
	return s
}

func discard() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
