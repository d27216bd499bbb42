// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runbatch runs one shell command per matched file with bounded parallelism.
// It renders each command from a template, optionally creates a directory first, and writes
// the captured output of every finished command to a shared, serialized output.
// Failed commands either stop the admission of further work (fail-fast) or are reported and skipped.
package runbatch
