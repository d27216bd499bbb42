// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
)

const (
	// GOOSWindows is the string constant for Windows OS from the runtime package.
	GOOSWindows          = "windows"
	commandSwitchWindows = "/C"         // Command switch for Windows cmd.exe
	commandSwitchUnix    = "-c"         // Command switch for Unix-like shells
	winSystem32          = "System32"   // System32 is the directory where cmd.exe is located on Windows.
	cmdExe               = "cmd.exe"    // cmdExe is the name of the command interpreter executable on Windows.
	binSh                = "/bin/sh"    // Default shell for Unix-like systems.
	winSystemRootEnv     = "SystemRoot" // Environment variable for Windows system root directory.
)

// Executor runs a rendered command line and reports its outcome.
type Executor interface {
	Execute(ctx context.Context, label, command string) *Result
}

var _ Executor = (*ShellExecutor)(nil)

// ShellExecutor runs commands through the system shell, capturing stdout and stderr.
type ShellExecutor struct {
	Shell string            // Shell executable, defaults to DefaultShell()
	Cwd   string            // Working directory, empty means the current one
	Env   map[string]string // Extra environment variables
}

// Execute implements the Executor interface for ShellExecutor.
func (e *ShellExecutor) Execute(ctx context.Context, label, command string) *Result {
	cmd, err := NewShellCommand(label, e.Shell, command)
	if err != nil {
		return failedResult(&Result{Label: label, Command: command}, err)
	}

	cmd.Cwd = e.Cwd
	cmd.Env = e.Env

	res := cmd.Run(ctx)
	res.Command = command

	return res
}

// NewShellCommand creates an OSCommand that runs command through shell.
// If shell is empty the platform default is used, a bare name is looked up in PATH.
func NewShellCommand(label, shell, command string) (*OSCommand, error) {
	if shell == "" {
		shell = DefaultShell()
	}

	shell, err := LookPath(shell)
	if err != nil {
		return nil, errors.Join(ErrCouldNotStartProcess, err)
	}

	return &OSCommand{
		Label: label,
		Path:  shell,
		Args:  []string{shellSwitch(), command},
	}, nil
}

// DefaultShell returns the shell used to run commands, /bin/sh or cmd.exe on Windows.
func DefaultShell() string {
	if runtime.GOOS == GOOSWindows {
		systemRoot := os.Getenv(winSystemRootEnv)
		if systemRoot == "" {
			systemRoot = `C:\Windows`
		}

		return fmt.Sprintf(`%s\%s\%s`, systemRoot, winSystem32, cmdExe)
	}

	return binSh
}

func shellSwitch() string {
	if runtime.GOOS == GOOSWindows {
		return commandSwitchWindows
	}

	return commandSwitchUnix
}
