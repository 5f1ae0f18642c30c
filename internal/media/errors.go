package media

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for every failure the conversion core can report.
// Callers match them with errors.Is; wrapped messages carry the context
// (offending kind, exit status) needed for a human-readable reply.
var (
	ErrUnsupportedFormat       = errors.New("unsupported format")
	ErrVectorRenderingDisabled = errors.New("vector rendering disabled")
	ErrVideoDecodingDisabled   = errors.New("video decoding disabled")
	ErrDecodeFailure           = errors.New("decode failure")
	ErrMissingTranscoder       = errors.New("transcoder not found")
	ErrTranscodeFailure        = errors.New("transcode failure")
)

// TranscodeError describes an external process run that did not produce a
// usable output. It unwraps to ErrTranscodeFailure.
type TranscodeError struct {
	ExitCode int    // -1 when the process never exited normally
	Stderr   string // trimmed tail of the process's stderr
	TimedOut bool
	Err      error
}

func (e *TranscodeError) Error() string {
	var b strings.Builder
	b.WriteString(ErrTranscodeFailure.Error())
	switch {
	case e.TimedOut:
		b.WriteString(": timed out")
	case e.ExitCode > 0:
		fmt.Fprintf(&b, ": exit status %d", e.ExitCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if e.Stderr != "" {
		fmt.Fprintf(&b, " (%s)", e.Stderr)
	}
	return b.String()
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *TranscodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTranscodeFailure}
	}
	return []error{ErrTranscodeFailure, e.Err}
}

// tail keeps the last n bytes of a process's stderr for error messages.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
