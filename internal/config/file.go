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

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/matt-FFFFFF/ladon/internal/ctxlog"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
)

var (
	// ErrReadConfig is returned when the config file cannot be read.
	ErrReadConfig = errors.New("failed to read config file")
	// ErrParseConfig is returned when the config file cannot be decoded.
	ErrParseConfig = errors.New("failed to parse config file")
	// ErrUnknownConfigFormat is returned when the file extension is not a supported format.
	ErrUnknownConfigFormat = errors.New("unknown config file format, expected .yaml, .yml or .hcl")
)

// FsFactory returns the filesystem config files are read from.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// File is the content of a config file. Nil fields were not set.
type File struct {
	Fail      *bool   `yaml:"fail"      hcl:"fail,optional"`
	MakeDirs  *string `yaml:"makedirs"  hcl:"makedirs,optional"`
	Processes *int    `yaml:"processes" hcl:"processes,optional"`
	Verbose   *bool   `yaml:"verbose"   hcl:"verbose,optional"`
	Hidden    *bool   `yaml:"hidden"    hcl:"hidden,optional"`
	Shell     *string `yaml:"shell"     hcl:"shell,optional"`
}

// Load reads the config file at src, choosing the decoder from its extension.
// src is a local path or a go-getter source.
func Load(ctx context.Context, src string) (*File, error) {
	data, name, err := readSource(ctx, src)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(name))

	ctxlog.Debug(ctx, "loading config file", "source", src, "format", ext)

	f := &File{}

	switch ext {
	case ".hcl":
		// hclsimple picks the native syntax from a lower case .hcl suffix
		name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)) + ext
		if err := hclsimple.Decode(name, data, evalContext(), f); err != nil {
			return nil, errors.Join(ErrParseConfig, err)
		}
	case ".yaml", ".yml":
		if err := yaml.UnmarshalWithOptions(data, f, yaml.DisallowUnknownField()); err != nil {
			return nil, errors.Join(ErrParseConfig, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownConfigFormat, src)
	}

	return f, nil
}

// evalContext exposes the process environment to HCL files as the env object,
// for example makedirs = "${env.HOME}/out/RELDIR".
func evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)

	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			vars[k] = cty.StringVal(v)
		}
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
	}
}
