// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package providers

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// IncludeHidden is a type that indicates whether to include hidden files and directories.
type IncludeHidden bool

var (
	// HiddenInclude tells the provider to include hidden files and directories.
	HiddenInclude = IncludeHidden(true)
	// HiddenExclude tells the provider to exclude hidden files and directories.
	HiddenExclude = IncludeHidden(false)
)

var (
	// ErrInvalidPattern is returned when the glob pattern is malformed.
	ErrInvalidPattern = errors.New("invalid glob pattern")
	// ErrListFiles is returned when the filesystem walk fails.
	ErrListFiles = errors.New("failed to list files")
)

// ItemsProviderFunc is a function that returns a list of items to iterate over.
// It takes a context and the current working directory, and returns a list of items and an error.
type ItemsProviderFunc func(ctx context.Context, workingDirectory string) ([]string, error)

// ListFiles is an item provider that lists files matching a glob pattern.
// Matching is case-insensitive and ** matches any number of directories.
// It returns full paths in lexical walk order. Directories are never returned.
func ListFiles(pattern string, includeHidden IncludeHidden) ItemsProviderFunc {
	return func(ctx context.Context, workingDirectory string) ([]string, error) {
		// Use the working directory as base if pattern is not absolute
		searchPattern := pattern
		if !filepath.IsAbs(pattern) {
			searchPattern = filepath.Join(workingDirectory, pattern)
		}

		slashPattern := filepath.ToSlash(searchPattern)
		if !doublestar.ValidatePattern(slashPattern) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidPattern, pattern)
		}

		base, rest := doublestar.SplitPattern(slashPattern)
		root := filepath.FromSlash(base)
		matchPattern := strings.ToLower(slashPattern)

		// without ** a match is never deeper than the remaining segments
		maxDepth := -1
		if !strings.Contains(rest, "**") {
			maxDepth = strings.Count(rest, "/") + 1
		}

		dotSegments := hiddenSegments(strings.ToLower(rest))

		var matches []string

		err := afero.Walk(FsFactory(), root, func(path string, info os.FileInfo, err error) error {
			// Check for context cancellation
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				// Continue execution
			}

			if err != nil {
				if path == root && errors.Is(err, fs.ErrNotExist) {
					return filepath.SkipDir
				}

				return err
			}

			if path == root {
				if !info.IsDir() {
					return filepath.SkipDir
				}

				return nil
			}

			if !bool(includeHidden) && strings.HasPrefix(info.Name(), ".") &&
				!namedByPattern(dotSegments, info.Name()) {
				if info.IsDir() {
					return filepath.SkipDir
				}

				return nil
			}

			relPath, err := filepath.Rel(root, path)
			if err != nil {
				return fmt.Errorf("failed to get relative path for %s: %w", path, err)
			}

			depth := strings.Count(relPath, string(filepath.Separator)) + 1

			if info.IsDir() {
				if maxDepth > 0 && depth >= maxDepth {
					return filepath.SkipDir
				}

				return nil
			}

			if maxDepth > 0 && depth > maxDepth {
				return nil
			}

			ok, err := doublestar.Match(matchPattern, strings.ToLower(filepath.ToSlash(path)))
			if err != nil {
				return errors.Join(ErrInvalidPattern, err)
			}

			if ok {
				matches = append(matches, path)
			}

			return nil
		})

		switch {
		case err == nil, errors.Is(err, filepath.SkipDir):
			return matches, nil
		case errors.Is(err, ErrInvalidPattern):
			return nil, err
		default:
			return nil, fmt.Errorf("%w with pattern %s: %w", ErrListFiles, pattern, err)
		}
	}
}

// hiddenSegments returns the segments of a slash separated pattern that start with a dot.
// Hidden entries matching one of them are spelled out by the pattern and are not skipped.
func hiddenSegments(pattern string) []string {
	var segs []string

	for seg := range strings.SplitSeq(pattern, "/") {
		if strings.HasPrefix(seg, ".") && seg != "." && seg != ".." {
			segs = append(segs, seg)
		}
	}

	return segs
}

func namedByPattern(segs []string, name string) bool {
	name = strings.ToLower(name)

	for _, seg := range segs {
		if ok, _ := doublestar.Match(seg, name); ok {
			return true
		}
	}

	return false
}
