// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"runtime"
	"testing"

	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func stubFs(t *testing.T, files map[string]string) {
	t.Helper()

	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}

	stubs := gostub.Stub(&FsFactory, func() afero.Fs {
		return fs
	})
	t.Cleanup(stubs.Reset)
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, runtime.NumCPU(), c.Processes)
	assert.False(t, c.Fail)
	assert.Empty(t, c.MakeDirs)
	assert.Empty(t, c.Shell)
}

func TestLoad(t *testing.T) {
	stubFs(t, map[string]string{
		"/cfg/ladon.yaml": "fail: true\nprocesses: 3\nmakedirs: out/RELDIR\n",
		"/cfg/ladon.yml":  "verbose: true\nhidden: true\n",
		"/cfg/ladon.hcl":  "fail = true\nprocesses = 3\nshell = \"/bin/bash\"\n",
		"/cfg/LADON.HCL":  "hidden = true\n",
	})

	tests := []struct {
		name string
		path string
		want *File
	}{
		{
			name: "yaml",
			path: "/cfg/ladon.yaml",
			want: &File{Fail: ptr(true), Processes: ptr(3), MakeDirs: ptr("out/RELDIR")},
		},
		{
			name: "yml",
			path: "/cfg/ladon.yml",
			want: &File{Verbose: ptr(true), Hidden: ptr(true)},
		},
		{
			name: "hcl",
			path: "/cfg/ladon.hcl",
			want: &File{Fail: ptr(true), Processes: ptr(3), Shell: ptr("/bin/bash")},
		},
		{
			name: "upper case extension",
			path: "/cfg/LADON.HCL",
			want: &File{Hidden: ptr(true)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(context.Background(), tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_HCLEnv(t *testing.T) {
	t.Setenv("LADON_TEST_OUT", "/srv/out")
	stubFs(t, map[string]string{
		"/cfg/env.hcl":     "makedirs = \"${env.LADON_TEST_OUT}/RELDIR\"\n",
		"/cfg/missing.hcl": "shell = env.LADON_TEST_NOT_SET\n",
	})

	got, err := Load(context.Background(), "/cfg/env.hcl")
	require.NoError(t, err)
	assert.Equal(t, &File{MakeDirs: ptr("/srv/out/RELDIR")}, got)

	_, err = Load(context.Background(), "/cfg/missing.hcl")
	require.ErrorIs(t, err, ErrParseConfig)
}

func TestLoad_Errors(t *testing.T) {
	stubFs(t, map[string]string{
		"/cfg/bad.yaml":     "fail: [\n",
		"/cfg/unknown.yaml": "parallel: 3\n",
		"/cfg/bad.hcl":      "fail = \n",
		"/cfg/type.hcl":     "processes = \"many\"\n",
		"/cfg/ladon.toml":   "fail = true\n",
	})

	tests := []struct {
		name string
		path string
		err  error
	}{
		{name: "missing file", path: "/cfg/missing.yaml", err: ErrReadConfig},
		{name: "invalid yaml", path: "/cfg/bad.yaml", err: ErrParseConfig},
		{name: "unknown yaml field", path: "/cfg/unknown.yaml", err: ErrParseConfig},
		{name: "invalid hcl", path: "/cfg/bad.hcl", err: ErrParseConfig},
		{name: "wrong hcl type", path: "/cfg/type.hcl", err: ErrParseConfig},
		{name: "unsupported extension", path: "/cfg/ladon.toml", err: ErrUnknownConfigFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Load(context.Background(), tt.path)
			require.ErrorIs(t, err, tt.err)
			assert.Nil(t, f)
		})
	}
}

func TestWithFile(t *testing.T) {
	base := Config{Pattern: "*.txt", Command: "echo FULLPATH", Processes: 8, Shell: "/bin/sh"}

	t.Run("nil file", func(t *testing.T) {
		assert.Equal(t, base, base.WithFile(nil))
	})

	t.Run("only set values apply", func(t *testing.T) {
		got := base.WithFile(&File{Fail: ptr(true), Processes: ptr(2)})
		assert.True(t, got.Fail)
		assert.Equal(t, 2, got.Processes)
		assert.Equal(t, "/bin/sh", got.Shell)
		assert.Equal(t, "*.txt", got.Pattern)
	})

	t.Run("explicit false overrides", func(t *testing.T) {
		c := base
		c.Verbose = true
		got := c.WithFile(&File{Verbose: ptr(false), MakeDirs: ptr("")})
		assert.False(t, got.Verbose)
		assert.Empty(t, got.MakeDirs)
	})

	t.Run("receiver is not modified", func(t *testing.T) {
		_ = base.WithFile(&File{Hidden: ptr(true)})
		assert.False(t, base.Hidden)
	})
}

func TestValidate(t *testing.T) {
	require.NoError(t, Config{Processes: 0}.Validate())
	require.NoError(t, Config{Processes: 4}.Validate())
	require.ErrorIs(t, Config{Processes: -1}.Validate(), ErrInvalidProcesses)
}
