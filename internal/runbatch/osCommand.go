// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/matt-FFFFFF/ladon/internal/ctxlog"
	"github.com/matt-FFFFFF/ladon/internal/signalbroker"
)

const (
	maxBufferSize = 8 * 1024 * 1024 // 8MB
)

var (
	// ErrBufferOverflow is returned when the output exceeds the max size.
	ErrBufferOverflow = fmt.Errorf("output exceeds max size of %d bytes", maxBufferSize)
	// ErrCouldNotStartProcess is returned when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrCommandFailed is returned when the process exits with a non-zero exit code.
	ErrCommandFailed = errors.New("command failed")
	// ErrFailedToReadBuffer is returned when the buffer from the operating system pipe could not be read.
	ErrFailedToReadBuffer = errors.New("failed to read buffer")
	// ErrTimeoutExceeded is returned when the command is killed because the context is done.
	ErrTimeoutExceeded = errors.New("context done, process killed")
	// ErrFailedToCreatePipe is returned when the operating system pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrSignalReceived is returned when a operating system signal is received by the child process.
	ErrSignalReceived = errors.New("signal received")
	// ErrDuplicateSignalReceived is returned when a duplicate signal is received, forcing process termination.
	ErrDuplicateSignalReceived = errors.New("duplicate signal received, process forcefully terminated")
)

// OSCommand represents a single process to be run.
type OSCommand struct {
	Label string            // Label used in logs and errors
	Path  string            // The executable to run (full path)
	Args  []string          // Arguments to the command, do not include the executable name itself.
	Cwd   string            // The working directory for the process, empty means the current one
	Env   map[string]string // Environment variables added to the inherited environment
	sigCh chan os.Signal    // Channel to receive signals, allows mocking in test.
}

// Run starts the process, waits for it to finish and returns its exit code and captured output.
// Signals received while the process runs are forwarded to it; a second signal of the same
// type, or the context being done, kills it.
func (c *OSCommand) Run(ctx context.Context) *Result {
	logger := ctxlog.Logger(ctx).
		With("runnableType", "OSCommand").
		With("label", c.Label)

	logger.Debug("command info", "path", c.Path, "cwd", c.Cwd, "args", c.Args)

	// In a drainable run the first signal only stops admission and the second cancels ctx,
	// so signals are neither forwarded nor counted as a failure.
	drainable := signalbroker.Draining(ctx) != nil

	sigCh := c.sigCh
	if sigCh == nil && !drainable {
		sigCh = signalbroker.New(ctx)
		defer signalbroker.Stop(sigCh)
	}

	res := &Result{
		Label:    c.Label,
		ExitCode: 0,
		Status:   ResultStatusUnknown,
	}

	env := os.Environ()

	for k, v := range c.Env {
		logger.Debug("adding environment variable", "key", k, "value", v)
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}

	rOut, wOut, err := os.Pipe()
	if err != nil {
		return failedResult(res, errors.Join(ErrFailedToCreatePipe, err))
	}

	defer closeQuietly(rOut)

	rErr, wErr, err := os.Pipe()
	if err != nil {
		closeQuietly(wOut)
		return failedResult(res, errors.Join(ErrFailedToCreatePipe, err))
	}

	defer closeQuietly(rErr)

	devNull, err := os.Open(os.DevNull)
	if err != nil {
		closeQuietly(wOut, wErr)

		return failedResult(res, errors.Join(ErrFailedToCreatePipe, err))
	}

	defer closeQuietly(devNull)

	execName := filepath.Base(c.Path)
	args := slices.Concat([]string{execName}, c.Args)

	logger.Debug("starting process")

	ps, err := os.StartProcess(c.Path, args, &os.ProcAttr{
		Dir:   c.Cwd,
		Env:   env,
		Files: []*os.File{devNull, wOut, wErr},
	})
	if err != nil {
		closeQuietly(wOut, wErr)

		return failedResult(res, errors.Join(ErrCouldNotStartProcess, err))
	}

	logger.Debug("process started", "pid", ps.Pid)

	// The pipes are drained while the process runs so it never blocks on a full pipe.
	var (
		wg             sync.WaitGroup
		stdout, stderr []byte
		outErr, errErr error
	)

	wg.Add(2) //nolint:mnd

	go func() {
		defer wg.Done()

		stdout, outErr = readAllUpToMax(ctx, rOut, maxBufferSize)
	}()

	go func() {
		defer wg.Done()

		stderr, errErr = readAllUpToMax(ctx, rErr, maxBufferSize)
	}()

	// This is the process watchdog that will kill the process if the context is done
	// or pass on any signals to the process.
	done := make(chan struct{})
	// This allows us to track why the processes was killed.
	wasKilled := make(chan error, 2) //nolint:mnd

	go func(sigCh <-chan os.Signal) {
		signalCount := make(map[os.Signal]struct{})

		for {
			select {
			case s, ok := <-sigCh:
				if !ok {
					sigCh = nil
					continue
				}

				if drainable {
					logger.Info("received signal, letting the process finish", "signal", s.String())
					continue
				}

				// is this the second signal received of this type?
				if _, seen := signalCount[s]; seen {
					logger.Info("received duplicate signal, killing process", "signal", s.String())
					killPs(ctx, ps)

					select {
					case wasKilled <- ErrDuplicateSignalReceived:
					default:
					}

					return
				}

				signalCount[s] = struct{}{}

				logger.Info("received signal", "signal", s.String())

				if err := ps.Signal(s); err != nil {
					logger.Info("failed to send signal", "signal", s.String(), "error", err)
				}

				select {
				case wasKilled <- ErrSignalReceived:
				default:
				}

			case <-ctx.Done():
				logger.Info("context done, killing process")
				killPs(ctx, ps)

				select {
				case wasKilled <- ErrTimeoutExceeded:
				default:
				}

				return

			case <-done:
				return
			}
		}
	}(sigCh)

	logger.Debug("waiting for process to finish")

	state, psErr := ps.Wait()
	close(done)

	closeQuietly(wOut, wErr)

	wg.Wait()

	res.StdOut = stdout
	res.StdErr = stderr
	res.Error = psErr
	res.ExitCode = -1

	if state != nil {
		res.ExitCode = state.ExitCode()
	}

	logger.Debug("process finished", "exitCode", res.ExitCode,
		"stdoutBytes", len(stdout), "stderrBytes", len(stderr))

	// Check if the process was killed due to context or signal
	for killed := true; killed; {
		select {
		case e := <-wasKilled:
			res.Error = errors.Join(res.Error, e)
			res.ExitCode = -1
		default:
			// No more errors from watchdog
			killed = false
		}
	}

	if outErr != nil || errErr != nil {
		res.Error = errors.Join(res.Error, outErr, errErr)
	}

	switch {
	case res.Error == nil && res.ExitCode == 0:
		res.Status = ResultStatusSuccess
	case res.Error == nil:
		// A non-zero exit code does not generate an error from Wait.
		res.Error = ErrCommandFailed
		res.Status = ResultStatusError
	default:
		if res.ExitCode == 0 {
			res.ExitCode = -1 // If exit code is 0 but there is an error, set exit code to -1
		}

		res.Status = ResultStatusError
	}

	logger.Debug("process status", "status", res.Status.String(), "error", res.Error)

	return res
}

func failedResult(res *Result, err error) *Result {
	res.Error = err
	res.ExitCode = -1
	res.Status = ResultStatusError

	return res
}

// readAllUpToMax reads r until EOF, keeping at most maxBufferSize bytes.
// Anything past the limit is discarded so the writer never blocks.
func readAllUpToMax(ctx context.Context, r io.Reader, maxBufferSize int64) ([]byte, error) {
	var buf bytes.Buffer

	n, err := io.CopyN(&buf, r, maxBufferSize+1)
	if err != nil && err != io.EOF {
		return buf.Bytes(), errors.Join(ErrFailedToReadBuffer, err)
	}

	if n > maxBufferSize {
		ctxlog.Logger(ctx).Debug(
			"buffer overflow in readAllUpToMax",
			"bytesRead", n,
			"maxBytes", maxBufferSize,
		)

		_, _ = io.Copy(io.Discard, r)

		return buf.Bytes()[:maxBufferSize], ErrBufferOverflow
	}

	return buf.Bytes(), nil
}

// closeQuietly closes files whose close error carries no information,
// such as pipe ends that are already drained.
func closeQuietly(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

// killPs kills the process.
func killPs(ctx context.Context, ps *os.Process) {
	if err := ps.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			ctxlog.Logger(ctx).Debug("process already done", "pid", ps.Pid)
			return
		}

		ctxlog.Logger(ctx).Error("process kill error", "pid", ps.Pid, "error", err)

		return
	}

	ctxlog.Logger(ctx).Info("process killed", "pid", ps.Pid)
}
