// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pathtemplate

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// RecursiveWildcard marks the start of the relative part of a pattern.
const RecursiveWildcard = "**"

var (
	// ErrHomeDir is returned when a pattern starts with ~ and the home directory is unknown.
	ErrHomeDir = errors.New("cannot resolve home directory")
	// ErrAbsPath is returned when a pattern cannot be made absolute.
	ErrAbsPath = errors.New("cannot resolve absolute path")
)

// UserHomeDir returns the home directory used for ~ expansion.
var UserHomeDir = os.UserHomeDir

// ResolvePattern expands a leading ~ and returns the pattern as an absolute, cleaned path.
func ResolvePattern(pattern string) (string, error) {
	if strings.HasPrefix(pattern, "~") {
		home, err := UserHomeDir()
		if err != nil {
			return "", errors.Join(ErrHomeDir, err)
		}

		pattern = home + pattern[1:]
	}

	abs, err := filepath.Abs(pattern)
	if err != nil {
		return "", errors.Join(ErrAbsPath, err)
	}

	return abs, nil
}

// RelativeStart returns the offset at which relative paths begin for files matched by absPattern.
// This is the position of the first ** in the pattern, or the length of cwd plus its
// trailing separator when the pattern has no recursive wildcard.
// The offset is not aligned to path segments.
func RelativeStart(absPattern, cwd string) int {
	if i := strings.Index(absPattern, RecursiveWildcard); i >= 0 {
		return i
	}

	return len(cwd) + 1
}
