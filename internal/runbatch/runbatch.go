// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// BatchError aggregates errors from multiple commands and formats a detailed error message.
type BatchError struct {
	FailedResults Results
}

// Error implements the error interface for BatchError.
func (e *BatchError) Error() string {
	return e.multiError().Error()
}

// Unwrap returns the errors of the failed results so errors.Is and errors.As see them.
func (e *BatchError) Unwrap() []error {
	return e.multiError().WrappedErrors()
}

func (e *BatchError) multiError() *multierror.Error {
	merr := &multierror.Error{
		ErrorFormat: formatBatchErrors,
	}

	for _, r := range e.FailedResults {
		merr = multierror.Append(merr, &TaskError{Result: r})
	}

	return merr
}

func formatBatchErrors(errs []error) string {
	msg := strings.Builder{}
	fmt.Fprintf(&msg, "batch execution failed, %d command(s) failed:\n", len(errs))

	for _, err := range errs {
		msg.WriteString("  * ")
		msg.WriteString(strings.ReplaceAll(err.Error(), "\n", "\n    "))
		msg.WriteString("\n")
	}

	return msg.String()
}

// TaskError describes a single failed task.
type TaskError struct {
	Result *Result
}

// Error implements the error interface for TaskError.
// The command and its captured stderr are included since the output of a task that
// fails a fail-fast run is not otherwise written.
func (e *TaskError) Error() string {
	msg := strings.Builder{}
	msg.WriteString(e.Summary())

	if e.Result.Command != "" {
		msg.WriteString("\ncommand: ")
		msg.WriteString(e.Result.Command)
	}

	if stderr := strings.TrimSpace(string(e.Result.StdErr)); stderr != "" {
		msg.WriteString("\n")
		msg.WriteString(stderr)
	}

	return msg.String()
}

// Summary returns a single line describing the failure.
func (e *TaskError) Summary() string {
	msg := strings.Builder{}
	msg.WriteString(e.Result.Label)
	msg.WriteString(": ")

	if e.Result.Error != nil {
		msg.WriteString(e.Result.Error.Error())
	} else {
		msg.WriteString(ErrCommandFailed.Error())
	}

	fmt.Fprintf(&msg, " (exit code: %d)", e.Result.ExitCode)

	return msg.String()
}

// Unwrap returns the underlying task error.
func (e *TaskError) Unwrap() error {
	return e.Result.Error
}
