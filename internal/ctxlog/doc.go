// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog provides a context-aware logger that can be used to log messages.
// It uses the slog package for structured logging and supports different log levels.
//
// The default is a pretty console handler writing to stderr. The level is read from the
// LADON_LOG_LEVEL environment variable ("DEBUG", "INFO", "WARN" or "ERROR"), any other
// value defaults to "WARN".
package ctxlog
