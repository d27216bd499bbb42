// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmd contains the command-line interface (CLI) for the module.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/matt-FFFFFF/ladon/internal/pathtemplate"
	"github.com/urfave/cli/v3"
)

const (
	failFlag      = "fail"
	makeDirsFlag  = "makedirs"
	processesFlag = "processes"
	verboseFlag   = "verbose"
	hiddenFlag    = "hidden"
	shellFlag     = "shell"
	configFlag    = "config"
)

// RootCmd is the root command for the CLI.
var RootCmd = New()

// New creates the root command. Each call returns an independent command.
func New() *cli.Command {
	return &cli.Command{
		Name:      "ladon",
		Usage:     "run a command for every file matching a glob pattern",
		UsageText: "ladon [options] <glob> -- <command...>",
		Description: `Ladon finds the files matching a glob pattern and runs a command for each of them,
several at a time. The pattern supports ** to match any number of directories.

Example:
  ladon "~/photos/**/*.jpg" -- convert FULLPATH -resize 50% RELDIR/BASENAME.thumb.jpg

The command and the --makedirs template may use these placeholders:

` + placeholderHelp(),
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    failFlag,
				Aliases: []string{"f"},
				Usage:   "stop starting new commands after the first failure",
				Sources: cli.EnvVars("LADON_FAIL"),
			},
			&cli.StringFlag{
				Name:    makeDirsFlag,
				Aliases: []string{"m"},
				Usage:   "create the directory given by `TEMPLATE` before running each command",
				Sources: cli.EnvVars("LADON_MAKEDIRS"),
			},
			&cli.IntFlag{
				Name:        processesFlag,
				Aliases:     []string{"p"},
				Usage:       "run at most `N` commands at the same time",
				DefaultText: "number of CPUs",
				Sources:     cli.EnvVars("LADON_PROCESSES"),
			},
			&cli.BoolFlag{
				Name:    verboseFlag,
				Aliases: []string{"v"},
				Usage:   "print each file and command before running it",
				Sources: cli.EnvVars("LADON_VERBOSE"),
			},
			&cli.BoolFlag{
				Name:    hiddenFlag,
				Usage:   "include hidden files and directories",
				Sources: cli.EnvVars("LADON_HIDDEN"),
			},
			&cli.StringFlag{
				Name:      shellFlag,
				Usage:     "run commands with `SHELL` instead of the platform default",
				TakesFile: true,
				Sources:   cli.EnvVars("LADON_SHELL"),
			},
			&cli.StringFlag{
				Name:      configFlag,
				Aliases:   []string{"c"},
				Usage:     "load defaults from a YAML or HCL `FILE`, local or a go-getter URL",
				TakesFile: true,
				Sources:   cli.EnvVars("LADON_CONFIG"),
			},
		},
		Action:                actionFunc,
		Copyright:             "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
		EnableShellCompletion: true,
		HideHelpCommand:       true,
	}
}

func placeholderHelp() string {
	var sb strings.Builder

	for _, p := range pathtemplate.Placeholders {
		fmt.Fprintf(&sb, "  %-9s %s\n", p.Name, p.Description)
	}

	return sb.String()
}
