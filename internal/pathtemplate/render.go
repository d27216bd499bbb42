// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pathtemplate

import (
	"path/filepath"
	"strings"
)

// Placeholder names recognised in templates.
const (
	FullPath = "FULLPATH"
	DirName  = "DIRNAME"
	BaseName = "BASENAME"
	Ext      = "EXT"
	RelDir   = "RELDIR"
	RelPath  = "RELPATH"
)

// Placeholder describes a template variable for help output.
type Placeholder struct {
	Name        string
	Description string
}

// Placeholders lists the template variables in the order they are documented.
var Placeholders = []Placeholder{
	{Name: FullPath, Description: "Full path, equivalent to DIRNAME" + string(filepath.Separator) + "BASENAME.EXT"},
	{Name: DirName, Description: "Directory name"},
	{Name: BaseName, Description: "File name without extension"},
	{Name: Ext, Description: "File name extension"},
	{Name: RelDir, Description: "Relative directory name"},
	{Name: RelPath, Description: "Relative file path"},
}

// Vars holds the values substituted for each placeholder.
type Vars struct {
	FullPath string
	DirName  string
	BaseName string
	Ext      string
	RelDir   string
	RelPath  string
}

// NewVars computes the placeholder values for filename.
// An empty filename yields empty values.
func NewVars(filename string, relativeStart int) Vars {
	if filename == "" {
		return Vars{}
	}

	dir := filepath.Dir(filename)
	base := filepath.Base(filename)

	var ext string
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		ext = base[i+1:]
	}

	if ext != "" {
		base = strings.TrimSuffix(base, "."+ext)
	}

	return Vars{
		FullPath: filename,
		DirName:  dir,
		BaseName: base,
		Ext:      ext,
		RelDir:   sliceFrom(dir, relativeStart),
		RelPath:  sliceFrom(filename, relativeStart),
	}
}

// Render replaces every placeholder in template with the value computed from filename.
// When quote is true each substituted value is wrapped in double quotes.
// Embedded quotes are not escaped.
func Render(filename string, relativeStart int, quote bool, template string) string {
	return NewVars(filename, relativeStart).Render(quote, template)
}

// Render applies the values to template in a single pass, so values containing
// placeholder names are left as they are.
func (v Vars) Render(quote bool, template string) string {
	q := func(s string) string { return s }
	if quote {
		q = func(s string) string { return `"` + s + `"` }
	}

	r := strings.NewReplacer(
		FullPath, q(v.FullPath),
		DirName, q(v.DirName),
		BaseName, q(v.BaseName),
		Ext, q(v.Ext),
		RelDir, q(v.RelDir),
		RelPath, q(v.RelPath),
	)

	return r.Replace(template)
}

func sliceFrom(s string, start int) string {
	if start < 0 {
		start = 0
	}

	if start >= len(s) {
		return ""
	}

	return s[start:]
}
