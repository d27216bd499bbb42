// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"
	"sync"

	"github.com/matt-FFFFFF/ladon/internal/ctxlog"
)

type drainKey struct{}

// WithDrain returns a context carrying a drain channel, and the function that closes it.
// The function may be called more than once.
func WithDrain(ctx context.Context) (context.Context, func()) {
	ch := make(chan struct{})
	once := &sync.Once{}

	return context.WithValue(ctx, drainKey{}, ch), func() {
		once.Do(func() { close(ch) })
	}
}

// Draining returns a channel that is closed once the run should stop starting new work.
// It returns nil, which never fires, if the context has no drain channel.
func Draining(ctx context.Context) <-chan struct{} {
	ch, _ := ctx.Value(drainKey{}).(chan struct{})
	return ch
}

// Watch monitors the signal channel and handles signals.
// The first signal of a given type calls drain, the second of the same type calls cancel.
func Watch(ctx context.Context, sigCh chan os.Signal, drain func(), cancel context.CancelFunc) {
	sigMap := make(map[os.Signal]struct{})
	for sig := range sigCh {
		if _, ok := sigMap[sig]; ok {
			ctxlog.Warn(ctx, "watchdog", "detail", "received second signal of type, forcefully terminating", "signal", sig.String())
			Stop(sigCh)
			close(sigCh)
			cancel()

			return
		}

		ctxlog.Warn(ctx, "watchdog", "detail", "received signal, no new commands will be started", "signal", sig.String())

		sigMap[sig] = struct{}{}

		if drain != nil {
			drain()
		}
	}
}
