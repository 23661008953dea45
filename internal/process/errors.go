package process

import (
	"context"
	"fmt"
	"strings"
)

// ExitError reports an external operation that completed with a non-zero
// status. The error text includes the complete output of the operation.
type ExitError struct {
	Command string
	Result  Result
}

func (e *ExitError) Error() string {
	output := strings.TrimRight(e.Result.Output, "\n")
	if output == "" {
		return fmt.Sprintf("%s exited with status %d", e.Command, e.Result.ExitCode)
	}
	return fmt.Sprintf("%s exited with status %d:\n%s", e.Command, e.Result.ExitCode, output)
}

// Check converts a non-zero Result into an *ExitError. Errors from running the
// command are returned unchanged.
func Check(cmd Command, result Result, err error) (Result, error) {
	if err != nil {
		return result, err
	}
	if !result.Succeeded() {
		return result, &ExitError{Command: cmd.String(), Result: result}
	}
	return result, nil
}

// RunChecked runs cmd with runner and fails with an *ExitError on a non-zero status.
func RunChecked(ctx context.Context, runner Runner, cmd Command) (Result, error) {
	result, err := runner.Run(ctx, cmd)
	return Check(cmd, result, err)
}
