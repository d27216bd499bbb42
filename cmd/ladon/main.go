// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the ladon command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/ladon"
	"github.com/matt-FFFFFF/ladon/cmd"
	"github.com/matt-FFFFFF/ladon/internal/ctxlog"
	"github.com/matt-FFFFFF/ladon/internal/signalbroker"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.EnvLogger())
	defer cancel()

	// The first signal stops new commands from starting, the second kills running ones.
	ctx, drain := signalbroker.WithDrain(ctx)

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, drain, cancel)

	cmd.RootCmd.Version = fmt.Sprintf("%s (commit: %s)", ladon.Version, ladon.Commit)

	err := cmd.RootCmd.Run(ctx, os.Args)

	if ctx.Err() != nil {
		ctxlog.Logger(ctx).Error("command terminated due to cancellation", "error", ctx.Err())
		os.Exit(1)
	}

	if err != nil {
		ctxlog.Logger(ctx).Error("command execution failed", "error", err)
		os.Exit(1)
	}

	ctxlog.Logger(ctx).Info("command completed successfully")
}
