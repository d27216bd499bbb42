// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrInvalidProcesses is returned when the concurrency cap is negative.
var ErrInvalidProcesses = errors.New("processes must not be negative")

// Config is the configuration for a single run.
// It is built once at startup and passed by value.
type Config struct {
	Pattern   string // Glob pattern selecting the files
	Command   string // Command template run for each file
	Fail      bool   // Stop after the first failed command
	MakeDirs  string // Directory template created before each command, empty for none
	Processes int    // Maximum number of commands in flight
	Verbose   bool   // Write per-file diagnostics
	Hidden    bool   // Match hidden files and directories
	Shell     string // Shell used to run commands, empty for the platform default
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Processes: runtime.NumCPU(),
	}
}

// WithFile returns a copy of c with every value set in f applied.
func (c Config) WithFile(f *File) Config {
	if f == nil {
		return c
	}

	if f.Fail != nil {
		c.Fail = *f.Fail
	}

	if f.MakeDirs != nil {
		c.MakeDirs = *f.MakeDirs
	}

	if f.Processes != nil {
		c.Processes = *f.Processes
	}

	if f.Verbose != nil {
		c.Verbose = *f.Verbose
	}

	if f.Hidden != nil {
		c.Hidden = *f.Hidden
	}

	if f.Shell != nil {
		c.Shell = *f.Shell
	}

	return c
}

// Validate checks the values that cannot be checked by the flag parser.
// A zero Processes value means the number of CPUs.
func (c Config) Validate() error {
	if c.Processes < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidProcesses, c.Processes)
	}

	return nil
}
