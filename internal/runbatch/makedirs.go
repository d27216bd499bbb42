// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
)

// FS is the filesystem used to create directories and to look up executables.
// Default is the OS filesystem, but can be replaced with a mock for testing.
var FS = afero.NewOsFs()

// sevenFiveFive is the file mode for directories created before running a command.
const sevenFiveFive = 0o755

// ErrMakeDirs is returned when a directory could not be created.
var ErrMakeDirs = errors.New("failed to create directory")

// MakeDirs creates path and any missing parents. An existing directory is not an error.
// An empty path refers to the working directory and is left alone.
func MakeDirs(path string) error {
	if path == "" {
		return nil
	}

	if err := FS.MkdirAll(path, sevenFiveFive); err != nil {
		return fmt.Errorf("%w %s: %w", ErrMakeDirs, path, err)
	}

	return nil
}
