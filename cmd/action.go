// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/matt-FFFFFF/ladon/internal/config"
	"github.com/matt-FFFFFF/ladon/internal/ctxlog"
	"github.com/matt-FFFFFF/ladon/internal/pathtemplate"
	"github.com/matt-FFFFFF/ladon/internal/providers"
	"github.com/matt-FFFFFF/ladon/internal/runbatch"
	"github.com/urfave/cli/v3"
)

const argsSeparator = "--"

var (
	// ErrUsage is returned when the glob pattern or the command is missing.
	ErrUsage = errors.New("expected a glob pattern and a command")
	// ErrWorkingDirectory is returned when the current directory cannot be determined.
	ErrWorkingDirectory = errors.New("could not determine the working directory")
)

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	args := positionalArgs(cmd.Args().Slice())
	if len(args) < 2 { //nolint:mnd
		if err := cli.ShowAppHelp(cmd); err != nil {
			ctxlog.Warn(ctx, "could not show help", "error", err)
		}

		return ErrUsage
	}

	cfg, err := buildConfig(ctx, cmd, args)
	if err != nil {
		return err
	}

	if cfg.Verbose {
		ctxlog.RaiseVerbosity(slog.LevelInfo)
	}

	absPattern, err := pathtemplate.ResolvePattern(cfg.Pattern)
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return errors.Join(ErrWorkingDirectory, err)
	}

	hidden := providers.HiddenExclude
	if cfg.Hidden {
		hidden = providers.HiddenInclude
	}

	files, err := providers.ListFiles(absPattern, hidden)(ctx, cwd)
	if err != nil {
		return err
	}

	ctxlog.Info(ctx, "matched files", "pattern", absPattern, "files", len(files))

	run := &runbatch.ForEachFile{
		Label:           cfg.Pattern,
		Files:           files,
		RelativeStart:   pathtemplate.RelativeStart(absPattern, cwd),
		CommandTemplate: cfg.Command,
		DirTemplate:     cfg.MakeDirs,
		MaxConcurrency:  cfg.Processes,
		FailFast:        cfg.Fail,
		Verbose:         cfg.Verbose,
		Executor:        &runbatch.ShellExecutor{Shell: cfg.Shell},
		Output:          runbatch.NewOutput(cmd.Root().Writer, cmd.Root().ErrWriter),
	}

	results, err := run.Run(ctx)
	if err != nil {
		return err
	}

	if failed := results.Failed(); len(failed) > 0 {
		ctxlog.Info(ctx, "some commands failed", "failed", len(failed), "total", len(results))
	}

	return nil
}

// positionalArgs drops the separator between the pattern and the command,
// unless the parser already consumed it.
func positionalArgs(args []string) []string {
	for i := 0; i < len(args) && i < 2; i++ {
		if args[i] == argsSeparator {
			return append(args[:i:i], args[i+1:]...)
		}
	}

	return args
}

// buildConfig merges the config file, the environment and the flags.
// Flags and environment variables override the config file.
func buildConfig(ctx context.Context, cmd *cli.Command, args []string) (config.Config, error) {
	cfg := config.Default()

	if src := cmd.String(configFlag); src != "" {
		f, err := config.Load(ctx, src)
		if err != nil {
			return config.Config{}, err
		}

		cfg = cfg.WithFile(f)
	}

	cfg.Pattern = args[0]
	cfg.Command = strings.Join(args[1:], " ")

	if cmd.IsSet(failFlag) {
		cfg.Fail = cmd.Bool(failFlag)
	}

	if cmd.IsSet(makeDirsFlag) {
		cfg.MakeDirs = cmd.String(makeDirsFlag)
	}

	if cmd.IsSet(processesFlag) {
		cfg.Processes = int(cmd.Int(processesFlag))
	}

	if cmd.IsSet(verboseFlag) {
		cfg.Verbose = cmd.Bool(verboseFlag)
	}

	if cmd.IsSet(hiddenFlag) {
		cfg.Hidden = cmd.Bool(hiddenFlag)
	}

	if cmd.IsSet(shellFlag) {
		cfg.Shell = cmd.String(shellFlag)
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, errors.Join(ErrUsage, err)
	}

	return cfg, nil
}
