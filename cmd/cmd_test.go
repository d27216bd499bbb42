// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/matt-FFFFFF/ladon/internal/config"
	"github.com/matt-FFFFFF/ladon/internal/providers"
	"github.com/matt-FFFFFF/ladon/internal/runbatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func skipOnWindows(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX shell commands")
	}
}

// newTestCmd returns a root command writing to buffers.
func newTestCmd() (*cli.Command, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer

	c := New()
	c.Writer = &stdout
	c.ErrWriter = &stderr

	return c, &stdout, &stderr
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()

	for _, name := range names {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(name), 0o644))
	}
}

func lines(s string) []string {
	out := strings.Split(strings.TrimSpace(s), "\n")
	slices.Sort(out)

	return out
}

func TestPositionalArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{name: "separator after pattern", args: []string{"*.txt", "--", "echo", "FULLPATH"}, want: []string{"*.txt", "echo", "FULLPATH"}},
		{name: "separator consumed by parser", args: []string{"*.txt", "echo", "FULLPATH"}, want: []string{"*.txt", "echo", "FULLPATH"}},
		{name: "separator first", args: []string{"--", "*.txt", "echo"}, want: []string{"*.txt", "echo"}},
		{name: "separator inside command kept", args: []string{"*.txt", "git", "diff", "--", "FULLPATH"}, want: []string{"*.txt", "git", "diff", "--", "FULLPATH"}},
		{name: "empty", args: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := slices.Clone(tt.args)
			assert.Equal(t, tt.want, positionalArgs(tt.args))
			assert.Equal(t, orig, tt.args, "input must not be modified")
		})
	}
}

func TestRootCmd_Usage(t *testing.T) {
	for _, args := range [][]string{
		{"ladon"},
		{"ladon", "*.txt"},
		{"ladon", "*.txt", "--"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			c, stdout, _ := newTestCmd()

			err := c.Run(context.Background(), args)
			require.ErrorIs(t, err, ErrUsage)
			assert.Contains(t, stdout.String(), "ladon [options] <glob> -- <command...>")
			assert.Contains(t, stdout.String(), "RELPATH")
		})
	}
}

func TestRootCmd_RunsCommandForEachFile(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	writeFiles(t, dir, "a.txt", "sub/b.txt", "sub/c.md")

	c, stdout, _ := newTestCmd()

	err := c.Run(context.Background(), []string{
		"ladon", filepath.Join(dir, "**", "*.txt"), "--", "echo", "RELPATH", "EXT",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt txt", "sub/b.txt txt"}, lines(stdout.String()))
}

func TestRootCmd_RelativePattern(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	writeFiles(t, dir, "x/one.txt", "x/two.txt")
	t.Chdir(dir)

	c, stdout, _ := newTestCmd()

	err := c.Run(context.Background(), []string{"ladon", "-p", "1", "x/*.txt", "--", "echo", "RELDIR", "BASENAME"})
	require.NoError(t, err)
	assert.Equal(t, "x one\nx two\n", stdout.String())
}

func TestRootCmd_FailFast(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	writeFiles(t, dir, "a.txt", "b.txt", "c.txt")

	c, stdout, _ := newTestCmd()

	err := c.Run(context.Background(), []string{
		"ladon", "-f", "-p", "1", filepath.Join(dir, "*.txt"), "--", "echo BASENAME; exit 3",
	})
	require.Error(t, err)

	var batchErr *runbatch.BatchError

	require.ErrorAs(t, err, &batchErr)
	assert.Len(t, batchErr.FailedResults, 1)
	assert.Equal(t, 3, batchErr.FailedResults[0].ExitCode)
	assert.Empty(t, stdout.String(), "no output is forwarded for a fail-fast failure")
}

func TestRootCmd_ContinueOnError(t *testing.T) {
	skipOnWindows(t)
	t.Setenv("NO_COLOR", "1")

	dir := t.TempDir()
	writeFiles(t, dir, "a.txt", "b.txt", "c.txt")

	c, stdout, stderr := newTestCmd()

	err := c.Run(context.Background(), []string{
		"ladon", filepath.Join(dir, "*.txt"), "--", `test BASENAME != "b" || exit 1; echo BASENAME`,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, lines(stdout.String()))
	assert.Contains(t, stderr.String(), filepath.Join(dir, "b.txt")+": command failed (exit code: 1)")
}

func TestRootCmd_MakeDirs(t *testing.T) {
	skipOnWindows(t)

	src := t.TempDir()
	out := t.TempDir()
	writeFiles(t, src, "2024/jan/a.txt", "2024/feb/b.txt")

	c, _, _ := newTestCmd()

	err := c.Run(context.Background(), []string{
		"ladon", "-m", filepath.Join(out, "RELDIR"),
		filepath.Join(src, "**", "*.txt"), "--", "cp", "FULLPATH", filepath.Join(out, "RELPATH"),
	})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, "2024", "jan", "a.txt"))
	assert.FileExists(t, filepath.Join(out, "2024", "feb", "b.txt"))
}

func TestRootCmd_Verbose(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	writeFiles(t, dir, "a.txt")

	c, _, stderr := newTestCmd()

	err := c.Run(context.Background(), []string{"ladon", "-v", filepath.Join(dir, "*.txt"), "--", "true", "FULLPATH"})
	require.NoError(t, err)
	assert.Contains(t, stderr.String(), "Processing 1 files...")
	assert.Contains(t, stderr.String(), "Processing "+filepath.Join(dir, "a.txt"))
	assert.Contains(t, stderr.String(), `true "`+filepath.Join(dir, "a.txt")+`"`)
}

func TestRootCmd_NoMatches(t *testing.T) {
	c, stdout, stderr := newTestCmd()

	err := c.Run(context.Background(), []string{
		"ladon", filepath.Join(t.TempDir(), "missing", "**", "*.txt"), "--", "echo", "FULLPATH",
	})
	require.NoError(t, err)
	assert.Empty(t, stdout.String())
	assert.Empty(t, stderr.String())
}

func TestRootCmd_InvalidPattern(t *testing.T) {
	c, _, _ := newTestCmd()

	err := c.Run(context.Background(), []string{"ladon", filepath.Join(t.TempDir(), "[a"), "--", "echo"})
	require.ErrorIs(t, err, providers.ErrInvalidPattern)
}

func TestRootCmd_ConfigFile(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	writeFiles(t, dir, "data/a.txt", "data/b.txt")

	cfgPath := filepath.Join(dir, "ladon.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("fail: true\nprocesses: 1\n"), 0o644))

	pattern := filepath.Join(dir, "data", "*.txt")

	t.Run("config file applies", func(t *testing.T) {
		c, _, _ := newTestCmd()

		err := c.Run(context.Background(), []string{"ladon", "-c", cfgPath, pattern, "--", "exit 1"})

		var batchErr *runbatch.BatchError

		require.ErrorAs(t, err, &batchErr)
		assert.Len(t, batchErr.FailedResults, 1, "one slot and fail-fast stop after the first failure")
	})

	t.Run("flag overrides config file", func(t *testing.T) {
		c, _, _ := newTestCmd()

		err := c.Run(context.Background(), []string{"ladon", "-c", cfgPath, "--fail=false", pattern, "--", "exit 1"})
		require.NoError(t, err)
	})

	t.Run("environment overrides config file", func(t *testing.T) {
		t.Setenv("LADON_FAIL", "false")

		c, _, _ := newTestCmd()

		err := c.Run(context.Background(), []string{"ladon", "-c", cfgPath, pattern, "--", "exit 1"})
		require.NoError(t, err)
	})

	t.Run("missing config file", func(t *testing.T) {
		c, _, _ := newTestCmd()

		err := c.Run(context.Background(), []string{"ladon", "-c", filepath.Join(dir, "nope.yaml"), pattern, "--", "true"})
		require.ErrorIs(t, err, config.ErrReadConfig)
	})
}

func TestRootCmd_NegativeProcesses(t *testing.T) {
	c, _, _ := newTestCmd()

	err := c.Run(context.Background(), []string{"ladon", "--processes=-2", "*.txt", "--", "true"})
	require.ErrorIs(t, err, ErrUsage)
	require.ErrorIs(t, err, config.ErrInvalidProcesses)
}

func TestPlaceholderHelp(t *testing.T) {
	help := placeholderHelp()
	for _, name := range []string{"FULLPATH", "DIRNAME", "BASENAME", "EXT", "RELDIR", "RELPATH"} {
		assert.Contains(t, help, name)
	}
}

func TestRootCmd_ShellFromPath(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	writeFiles(t, dir, "a.txt")

	c, stdout, _ := newTestCmd()

	err := c.Run(context.Background(), []string{"ladon", "--shell", "sh", filepath.Join(dir, "*.txt"), "--", "echo", "BASENAME"})
	require.NoError(t, err)
	assert.Equal(t, "a\n", stdout.String())
}
