// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pathtemplate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prashantv/gostub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelativeStart(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		cwd     string
		want    int
	}{
		{
			name:    "recursive wildcard",
			pattern: "/tmp/data/**/*.txt",
			cwd:     "/home/u",
			want:    10,
		},
		{
			name:    "first recursive wildcard wins",
			pattern: "/a/**/b/**/*.txt",
			cwd:     "/home/u",
			want:    3,
		},
		{
			name:    "no recursive wildcard uses cwd",
			pattern: "/home/u/x/*.csv",
			cwd:     "/home/u",
			want:    8,
		},
		{
			name:    "wildcard mid segment is not corrected",
			pattern: "/tmp/file**.txt",
			cwd:     "/",
			want:    9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeStart(tt.pattern, tt.cwd))
		})
	}
}

func TestRelativeStart_Scenario(t *testing.T) {
	pattern := "/tmp/data/**/*.txt"
	start := RelativeStart(pattern, "/")
	assert.Equal(t, "sub/a.txt", Render("/tmp/data/sub/a.txt", start, false, RelPath))
	assert.Equal(t, "x", Render("/home/u/x/y.csv", RelativeStart("/home/u/x/*.csv", "/home/u"), false, RelDir))
}

func TestResolvePattern(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	got, err := ResolvePattern(filepath.Join("sub", "**", "*.txt"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "sub", "**", "*.txt"), got)

	abs := filepath.Join(string(filepath.Separator), "a", "b", "*.txt")
	got, err = ResolvePattern(abs)
	require.NoError(t, err)
	assert.Equal(t, abs, got)
}

func TestResolvePattern_Home(t *testing.T) {
	home := filepath.Join(string(filepath.Separator), "home", "tester")
	stubs := gostub.Stub(&UserHomeDir, func() (string, error) { return home, nil })
	defer stubs.Reset()

	got, err := ResolvePattern("~/docs/*.md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "docs", "*.md"), got)
}

func TestResolvePattern_HomeError(t *testing.T) {
	stubs := gostub.Stub(&UserHomeDir, func() (string, error) { return "", errors.New("no home") })
	defer stubs.Reset()

	_, err := ResolvePattern("~/docs/*.md")
	require.ErrorIs(t, err, ErrHomeDir)
}
