// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter/v2"
	"github.com/spf13/afero"
)

const (
	goGetterPathSeparator = "//"
	goGetterRefSeparator  = "?"
	minimumGetterParts    = 3 // scheme, host and path
)

// ErrFetchConfig is returned when a remote config file cannot be retrieved.
var ErrFetchConfig = errors.New("failed to fetch config file")

// readSource returns the content of the config file at src and the file name used to pick
// its format. Paths that exist on FsFactory() are read directly, anything else is treated
// as a go-getter source such as git::https://example.com/repo//ladon.yaml?ref=v1.
func readSource(ctx context.Context, src string) ([]byte, string, error) {
	fs := FsFactory()

	if ok, _ := afero.Exists(fs, src); ok {
		data, err := afero.ReadFile(fs, src)
		if err != nil {
			return nil, "", errors.Join(ErrReadConfig, err)
		}

		return data, src, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, "", errors.Join(ErrReadConfig, err)
	}

	req := &getter.Request{
		Src:     src,
		Pwd:     wd,
		GetMode: getter.ModeDir,
	}

	// Local paths that do not exist are reported as read errors, not fetch errors.
	if ok, err := getter.Detect(req, &getter.FileGetter{}); ok && err == nil {
		return nil, "", fmt.Errorf("%w: %w %s", ErrReadConfig, os.ErrNotExist, src)
	}

	newURL, fileName := splitFileNameFromGetterURL(src)
	if newURL == "" || fileName == "" {
		return nil, "", fmt.Errorf("%w: invalid URL format: %s", ErrFetchConfig, src)
	}

	data, err := fetch(ctx, newURL, wd, fileName)
	if err != nil {
		return nil, "", err
	}

	return data, fileName, nil
}

// fetch downloads the directory at url into a temporary directory and reads fileName from it.
func fetch(ctx context.Context, url, wd, fileName string) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "ladon-getter-*")
	if err != nil {
		return nil, errors.Join(ErrFetchConfig, err)
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	cli := getter.Client{
		DisableSymlinks: true,
	}

	res, err := cli.Get(ctx, &getter.Request{
		Src:     url,
		Dst:     filepath.Join(tmpDir, "g"),
		Pwd:     wd,
		GetMode: getter.ModeDir,
	})
	if err != nil {
		return nil, errors.Join(ErrFetchConfig, err)
	}

	data, err := os.ReadFile(filepath.Join(res.Dst, fileName))
	if err != nil {
		return nil, errors.Join(ErrFetchConfig, err)
	}

	return data, nil
}

// splitFileNameFromGetterURL splits a go-getter URL into the directory URL and the file name.
// A ref query parameter is kept on the returned URL.
func splitFileNameFromGetterURL(url string) (string, string) {
	var ref string

	parts := strings.Split(url, goGetterPathSeparator)
	if len(parts) < minimumGetterParts {
		return "", ""
	}

	last := parts[len(parts)-1]

	if before, after, found := strings.Cut(last, goGetterRefSeparator); found {
		ref = after
		last = before
	}

	if filepath.Clean(last) == filepath.Dir(last) {
		return "", ""
	}

	fileName := filepath.Base(last)

	parts[len(parts)-1] = filepath.Dir(last)
	if parts[len(parts)-1] == "." {
		parts = parts[:len(parts)-1]
	}

	newURL := strings.Join(parts, goGetterPathSeparator)
	if ref != "" {
		newURL += goGetterRefSeparator + ref
	}

	return newURL, fileName
}
