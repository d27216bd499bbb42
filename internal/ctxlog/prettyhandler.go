// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/TylerBrock/colorjson"
	"github.com/matt-FFFFFF/ladon/internal/color"
)

var (
	// ErrMarshalAttribute is returned when the record attributes cannot be rendered.
	ErrMarshalAttribute = errors.New("error when marshaling attribute")
	// ErrIoWrite is returned when the log line cannot be written.
	ErrIoWrite = errors.New("error when writing to output")
)

// TimeFormat is the layout of the timestamp that starts each line.
const TimeFormat = "[15:04:05.000]"

// PrettyHandler writes one line per record to the console:
//
//	[15:04:05.000] LEVEL: message { "key": "value" }
//
// Attributes, including those added with WithAttrs and WithGroup, are rendered by an
// inner JSON handler and printed on the same line.
type PrettyHandler struct {
	attrs  slog.Handler
	buf    *bytes.Buffer
	mu     *sync.Mutex
	out    io.Writer
	colour bool
}

// Option configures a PrettyHandler.
type Option func(h *PrettyHandler)

// WithDestinationWriter sends log lines to w instead of stderr.
func WithDestinationWriter(w io.Writer) Option {
	return func(h *PrettyHandler) {
		h.out = w
	}
}

// WithAutoColour colours the output when stderr supports it, see color.Enabled.
func WithAutoColour() Option {
	return func(h *PrettyHandler) {
		h.colour = color.Enabled()
	}
}

// NewPrettyHandler returns a handler writing to stderr, without colour unless
// WithAutoColour is given. Only the Level of opts is used.
func NewPrettyHandler(opts *slog.HandlerOptions, options ...Option) *PrettyHandler {
	var level slog.Leveler
	if opts != nil {
		level = opts.Level
	}

	buf := &bytes.Buffer{}
	h := &PrettyHandler{
		attrs: slog.NewJSONHandler(buf, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: dropBuiltinAttrs,
		}),
		buf: buf,
		mu:  &sync.Mutex{},
		out: os.Stderr,
	}

	for _, opt := range options {
		opt(h)
	}

	return h
}

// Enabled reports whether records at level are logged.
func (h *PrettyHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.attrs.Enabled(ctx, level)
}

// WithAttrs returns a handler that adds attrs to every record.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.with(h.attrs.WithAttrs(attrs))
}

// WithGroup returns a handler that nests later attributes under name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	return h.with(h.attrs.WithGroup(name))
}

// Handle formats r and writes it as a single line.
func (h *PrettyHandler) Handle(ctx context.Context, r slog.Record) error {
	attrs, err := h.renderAttrs(ctx, r)
	if err != nil {
		return err
	}

	var line strings.Builder

	if !r.Time.IsZero() {
		line.WriteString(h.paint(r.Time.Format(TimeFormat), color.FgWhite))
		line.WriteByte(' ')
	}

	line.WriteString(h.paint(r.Level.String()+":", levelColour(r.Level)))
	line.WriteByte(' ')
	line.WriteString(h.paint(r.Message, color.FgHiWhite))

	if len(attrs) > 0 {
		line.WriteByte(' ')
		line.WriteString(attrs)
	}

	line.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := io.WriteString(h.out, line.String()); err != nil {
		return errors.Join(ErrIoWrite, err)
	}

	return nil
}

func (h *PrettyHandler) with(attrs slog.Handler) *PrettyHandler {
	clone := *h
	clone.attrs = attrs

	return &clone
}

// renderAttrs runs the inner JSON handler over r and re-renders its attributes with
// colorjson. It returns an empty string if the record has no attributes.
func (h *PrettyHandler) renderAttrs(ctx context.Context, r slog.Record) (string, error) {
	h.mu.Lock()
	defer func() {
		h.buf.Reset()
		h.mu.Unlock()
	}()

	if err := h.attrs.Handle(ctx, r); err != nil {
		return "", fmt.Errorf("error when rendering attributes: %w", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(h.buf.Bytes(), &fields); err != nil {
		return "", errors.Join(ErrMarshalAttribute, err)
	}

	if len(fields) == 0 {
		return "", nil
	}

	f := colorjson.NewFormatter()
	f.Indent = 0
	f.DisabledColor = !h.colour

	if !h.colour {
		// Keys are painted without consulting DisabledColor.
		f.KeyColor.DisableColor()
	}

	b, err := f.Marshal(fields)
	if err != nil {
		return "", errors.Join(ErrMarshalAttribute, err)
	}

	return string(b), nil
}

func (h *PrettyHandler) paint(s string, code color.Code) string {
	if !h.colour {
		return s
	}

	return color.Always(s, code)
}

func levelColour(level slog.Level) color.Code {
	switch {
	case level < slog.LevelInfo:
		return color.FgWhite
	case level < slog.LevelWarn:
		return color.FgCyan
	case level < slog.LevelError:
		return color.FgYellow
	default:
		return color.FgRed
	}
}

// dropBuiltinAttrs removes time, level and message from the inner JSON output,
// Handle prints those itself.
func dropBuiltinAttrs(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}

	switch a.Key {
	case slog.TimeKey, slog.LevelKey, slog.MessageKey:
		return slog.Attr{}
	}

	return a
}
