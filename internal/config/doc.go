// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config holds the immutable run configuration and loads optional config files.
//
// A config file may be YAML (.yaml, .yml) or HCL (.hcl) and sets defaults for the
// command-line flags. Flags and environment variables always take precedence.
//
// YAML example:
//
//	fail: true
//	processes: 4
//	makedirs: out/RELDIR
//
// HCL example:
//
//	fail      = true
//	processes = 4
//	makedirs  = "${env.HOME}/out/RELDIR"
//
// HCL files can read environment variables through the env object.
package config
