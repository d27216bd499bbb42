// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"slices"
)

// ResultStatus is the outcome of a single task.
type ResultStatus int

const (
	// ResultStatusUnknown is the zero value, used until a task has finished.
	ResultStatusUnknown ResultStatus = iota
	// ResultStatusSuccess means the command ran and exited with code zero.
	ResultStatusSuccess
	// ResultStatusError means the directory could not be created, the command could not be
	// started, or it exited with a non-zero code.
	ResultStatusError
)

// String returns the status name.
func (s ResultStatus) String() string {
	switch s {
	case ResultStatusSuccess:
		return "success"
	case ResultStatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Result represents the outcome of running the command for one file.
type Result struct {
	ExitCode int          // Exit code of the command
	Error    error        // Error, if any
	StdOut   []byte       // Output from the command
	StdErr   []byte       // Error output from the command
	Label    string       // Label of the command
	File     string       // The matched file the command was rendered for
	Command  string       // The rendered command line
	Status   ResultStatus // Outcome of the task
}

// Results is a slice of Result pointers, used to represent multiple results.
type Results []*Result

// HasError returns true if any result failed.
func (r Results) HasError() bool {
	return slices.ContainsFunc(r, (*Result).Failed)
}

// Failed returns only the failed results, in their original order.
func (r Results) Failed() Results {
	var failed Results

	for v := range slices.Values(r) {
		if v.Failed() {
			failed = append(failed, v)
		}
	}

	return failed
}

// Failed returns true if the result is an error or has a non-zero exit code.
func (r *Result) Failed() bool {
	return r.Status == ResultStatusError || r.Error != nil || r.ExitCode != 0
}
