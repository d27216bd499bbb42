// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package pathtemplate renders command and directory templates for a matched file.
//
// A template is plain text containing any number of the placeholders FULLPATH, DIRNAME,
// BASENAME, EXT, RELDIR and RELPATH. Each placeholder is replaced with a value derived from
// the file's absolute path. RELDIR and RELPATH are computed by slicing the path at a
// relative start offset, see RelativeStart.
package pathtemplate
