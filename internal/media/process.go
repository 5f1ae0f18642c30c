package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"time"
)

// processWaitDelay caps how long we wait for pipes to drain after the process
// is killed by context cancellation.
const processWaitDelay = 5 * time.Second

// runProcess executes bin with args, bound to ctx. Any failure is reported as
// a *TranscodeError carrying the exit code and the tail of stderr.
func runProcess(ctx context.Context, bin string, args []string, stdout io.Writer) error {
	if bin == "" {
		return ErrMissingTranscoder
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = processWaitDelay

	err := cmd.Run()
	if err == nil {
		return nil
	}

	te := &TranscodeError{ExitCode: -1, Stderr: tail(stderr.String(), 512)}

	// A killed process reports "signal: killed"; the context says why.
	if ctxErr := ctx.Err(); ctxErr != nil {
		te.TimedOut = errors.Is(ctxErr, context.DeadlineExceeded)
		te.Err = ctxErr
		return te
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		te.ExitCode = exitErr.ExitCode()
	} else {
		te.Err = err
	}
	return te
}
