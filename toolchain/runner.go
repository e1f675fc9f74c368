package toolchain

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Command describes one child process invocation.
type Command struct {
	Path string
	Args []string
	Env  []string // appended to the ambient environment
}

// String renders the command line for diagnostics.
func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Result holds the captured outcome of a finished process.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Success reports whether the process exited with status zero.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Runner runs a command to completion and captures its output.
// A non-zero exit status is reported in Result, not as an error; the error
// is reserved for failures to start or run the process at all.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, cmd Command) (Result, error)

// Run calls f(ctx, cmd).
func (f RunnerFunc) Run(ctx context.Context, cmd Command) (Result, error) {
	return f(ctx, cmd)
}

// ExecRunner runs commands as host processes.
type ExecRunner struct{}

// Run executes cmd with os/exec and waits for it to exit.
func (ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	if len(cmd.Env) > 0 {
		c.Env = append(c.Environ(), cmd.Env...)
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	Logger().Debug("running command", zap.Stringer("cmd", cmd), zap.Strings("env", cmd.Env))

	err := c.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		Logger().Debug("command exited", zap.Stringer("cmd", cmd), zap.Int("status", res.ExitCode))
		return res, nil
	}
	if err != nil {
		return res, err
	}
	return res, nil
}
