// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/matt-FFFFFF/ladon/internal/ctxlog"
	"github.com/matt-FFFFFF/ladon/internal/pathtemplate"
	"github.com/matt-FFFFFF/ladon/internal/signalbroker"
	"golang.org/x/sync/semaphore"
)

// ErrRunInterrupted is returned when a run stopped admitting files because of a signal.
var ErrRunInterrupted = errors.New("run interrupted, remaining files were not processed")

// SchedulerState is the lifecycle state of a ForEachFile run.
type SchedulerState int32

const (
	// StateIdle is the state before Run is called.
	StateIdle SchedulerState = iota
	// StateDispatching means files are being admitted.
	StateDispatching
	// StateDraining means no more files will be admitted and running commands are awaited.
	StateDraining
	// StateDone means every admitted command finished and the run succeeded.
	StateDone
	// StateFailed means the run finished with an error.
	StateFailed
)

// String returns the state name.
func (s SchedulerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDispatching:
		return "dispatching"
	case StateDraining:
		return "draining"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ForEachFile runs a templated command for each file, at most MaxConcurrency at a time.
type ForEachFile struct {
	Label           string   // Label used in logs
	Files           []string // Matched files, run in this order
	RelativeStart   int      // Offset at which RELDIR and RELPATH begin
	CommandTemplate string   // Rendered with quoted values for each file
	DirTemplate     string   // Optional, rendered unquoted and created before the command runs
	MaxConcurrency  int      // Maximum commands in flight, defaults to the number of CPUs
	FailFast        bool     // Stop admitting files after the first failure
	Verbose         bool     // Write a line to the diagnostic stream before each command
	Executor        Executor // Runs the rendered command, defaults to a ShellExecutor
	Output          *Output  // Destination for command output, defaults to stdout and stderr
	state           atomic.Int32
}

// State returns the current lifecycle state.
func (f *ForEachFile) State() SchedulerState {
	return SchedulerState(f.state.Load())
}

// Run executes the command for every file and returns the results in completion order.
//
// A new command is started only when a running one finishes. In fail-fast mode the first
// failure stops admission, commands already running are allowed to finish, and a
// *BatchError listing every failure is returned. Otherwise failures are reported to the
// diagnostic stream and the run continues.
func (f *ForEachFile) Run(ctx context.Context) (Results, error) {
	logger := ctxlog.Logger(ctx).
		With("runnableType", "ForEachFile").
		With("label", f.Label)

	maxConcurrency := f.MaxConcurrency
	if maxConcurrency < 1 {
		maxConcurrency = runtime.NumCPU()
	}

	executor := f.Executor
	if executor == nil {
		executor = &ShellExecutor{}
	}

	out := f.Output
	if out == nil {
		out = DefaultOutput()
	}

	f.state.Store(int32(StateDispatching))

	logger.Debug("starting run",
		"files", len(f.Files),
		"maxConcurrency", maxConcurrency,
		"failFast", f.FailFast)

	if f.Verbose {
		f.diagnostic(ctx, out, "Processing %d files...", len(f.Files))
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		results  = make(Results, 0, len(f.Files))
		failed   atomic.Bool
		runErr   error
		sem      = semaphore.NewWeighted(int64(maxConcurrency))
		draining = signalbroker.Draining(ctx)
	)

dispatch:
	for i, file := range f.Files {
		if err := sem.Acquire(ctx, 1); err != nil {
			logger.Info("context done, not starting remaining commands", "remaining", len(f.Files)-i)
			runErr = err

			break
		}

		// A slot is only released after the failure flag is set, so a failure is
		// always observed here before the next file is admitted.
		if failed.Load() {
			sem.Release(1)
			logger.Info("fail-fast triggered, not starting remaining commands", "remaining", len(f.Files)-i)

			break
		}

		select {
		case <-draining:
			sem.Release(1)
			logger.Info("interrupted, not starting remaining commands", "remaining", len(f.Files)-i)
			runErr = ErrRunInterrupted

			break dispatch
		default:
		}

		wg.Add(1)

		go func(file string) {
			defer wg.Done()
			defer sem.Release(1)

			res := f.runFile(ctx, executor, out, file)

			mu.Lock()
			results = append(results, res)
			mu.Unlock()

			if f.FailFast && res.Failed() {
				failed.Store(true)
			}
		}(file)
	}

	f.state.Store(int32(StateDraining))
	wg.Wait()

	var err error

	if f.FailFast && results.HasError() {
		err = &BatchError{FailedResults: results.Failed()}
	}

	if runErr != nil {
		err = errors.Join(runErr, err)
	}

	if err != nil {
		f.state.Store(int32(StateFailed))
		logger.Debug("run failed", "error", err)

		return results, err
	}

	f.state.Store(int32(StateDone))
	logger.Debug("run completed", "commands", len(results), "failed", len(results.Failed()))

	return results, nil
}

// runFile renders the templates for one file, creates the directory and runs the command.
func (f *ForEachFile) runFile(ctx context.Context, executor Executor, out *Output, file string) *Result {
	logger := ctxlog.Logger(ctx).With("file", file)

	vars := pathtemplate.NewVars(file, f.RelativeStart)
	command := vars.Render(true, f.CommandTemplate)

	var res *Result

	if f.DirTemplate != "" {
		dir := vars.Render(false, f.DirTemplate)
		logger.Debug("creating directory", "dir", dir)

		if err := MakeDirs(dir); err != nil {
			res = failedResult(&Result{Label: file, File: file, Command: command}, err)
		}
	}

	if res == nil {
		if f.Verbose {
			f.diagnostic(ctx, out, "Processing %s\n%s", file, command)
		}

		res = executor.Execute(ctx, file, command)
		res.Label = file
		res.File = file
		res.Command = command
	}

	switch {
	case !res.Failed():
		logger.Debug("command succeeded")
	case f.FailFast:
		// The output of a failed command is carried by the run's BatchError.
		logger.Debug("command failed", "exitCode", res.ExitCode, "error", res.Error)

		return res
	default:
		logger.Debug("command failed, continuing", "exitCode", res.ExitCode, "error", res.Error)
	}

	if err := out.WriteResult(res); err != nil {
		logger.Warn("could not write command output", "error", err)
	}

	return res
}

func (f *ForEachFile) diagnostic(ctx context.Context, out *Output, format string, args ...any) {
	if err := out.Diagnostic(format, args...); err != nil {
		ctxlog.Warn(ctx, "could not write diagnostic", "error", err)
	}
}
