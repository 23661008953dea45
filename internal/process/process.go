package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Result is the outcome of an external operation.
type Result struct {
	ExitCode int
	Output   string
}

// Succeeded reports whether the operation exited with status zero.
func (r Result) Succeeded() bool {
	return r.ExitCode == 0
}

// Command describes an external command invocation.
type Command struct {
	Dir  string
	Name string
	Args []string
}

// String returns the command line with arguments containing spaces quoted.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)
	for _, arg := range c.Args {
		if arg == "" || strings.ContainsAny(arg, " \t\"") {
			arg = fmt.Sprintf("%q", arg)
		}
		parts = append(parts, arg)
	}

	return strings.Join(parts, " ")
}

// Runner executes commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner runs commands as child processes.
type ExecRunner struct{}

// NewExecRunner creates a Runner backed by os/exec.
func NewExecRunner() ExecRunner {
	return ExecRunner{}
}

// Run executes the command and waits for it to exit. A non-zero exit status is
// reported in the Result, not as an error. An error is returned only when the
// command could not be started or was interrupted by ctx.
func (ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir

	var output bytes.Buffer
	c.Stdout = &output
	c.Stderr = &output

	err := c.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, fmt.Errorf("command %q interrupted: %w", cmd.String(), ctxErr)
		}

		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return Result{
				ExitCode: exitError.ExitCode(),
				Output:   output.String(),
			}, nil
		}

		return Result{}, fmt.Errorf("failed to run %q: %w\nEnsure %s is installed and in your PATH", cmd.String(), err, cmd.Name)
	}

	return Result{Output: output.String()}, nil
}
