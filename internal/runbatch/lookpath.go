// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const windowsExeSuffix = ".exe"

// ErrNotInPath is returned when an executable cannot be found in PATH.
var ErrNotInPath = errors.New("executable not found in PATH")

// LookPath returns the full path of the executable name found in a directory of PATH.
// Names that already contain a path separator are returned unchanged.
// Directories and, except on Windows, files without an execute bit are skipped.
func LookPath(name string) (string, error) {
	if strings.ContainsRune(name, filepath.Separator) || strings.ContainsRune(name, '/') {
		return name, nil
	}

	candidates := []string{name}
	if runtime.GOOS == GOOSWindows && filepath.Ext(name) == "" {
		candidates = append(candidates, name+windowsExeSuffix)
	}

	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir == "" {
			continue
		}

		for _, c := range candidates {
			path := filepath.Join(dir, c)

			info, err := FS.Stat(path)
			if err != nil || info.IsDir() {
				continue
			}

			if runtime.GOOS != GOOSWindows && info.Mode()&0o111 == 0 {
				continue
			}

			return path, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNotInPath, name)
}
