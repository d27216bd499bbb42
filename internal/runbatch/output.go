// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/matt-FFFFFF/ladon/internal/color"
)

// ErrWriteOutput is returned when captured output cannot be written.
var ErrWriteOutput = errors.New("failed to write output")

// Output is the shared sink for command output and diagnostics.
// All writes are serialized so the output of one command is never split by another.
type Output struct {
	mu     sync.Mutex
	stdout io.Writer
	stderr io.Writer
	colour bool
}

// NewOutput creates an Output writing command stdout to stdout, and command stderr and
// diagnostics to stderr.
func NewOutput(stdout, stderr io.Writer) *Output {
	return &Output{
		stdout: stdout,
		stderr: stderr,
		colour: color.EnabledFor(stderr),
	}
}

// DefaultOutput writes to the process standard streams.
func DefaultOutput() *Output {
	return NewOutput(os.Stdout, os.Stderr)
}

// Diagnostic writes a formatted line to the diagnostic stream.
func (o *Output) Diagnostic(format string, args ...any) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, err := fmt.Fprintf(o.stderr, format+"\n", args...); err != nil {
		return errors.Join(ErrWriteOutput, err)
	}

	return nil
}

// WriteResult writes the captured stdout and stderr of a finished command.
// For a failed command a diagnostic describing the failure is written first.
func (o *Output) WriteResult(r *Result) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if r.Failed() {
		msg := (&TaskError{Result: r}).Summary()
		if o.colour {
			msg = color.Always(msg, color.FgRed)
		}

		if _, err := fmt.Fprintln(o.stderr, msg); err != nil {
			return errors.Join(ErrWriteOutput, err)
		}
	}

	if len(r.StdOut) > 0 {
		if _, err := o.stdout.Write(r.StdOut); err != nil {
			return errors.Join(ErrWriteOutput, err)
		}
	}

	if len(r.StdErr) > 0 {
		if _, err := o.stderr.Write(r.StdErr); err != nil {
			return errors.Join(ErrWriteOutput, err)
		}
	}

	return nil
}
