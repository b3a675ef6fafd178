// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package logging provides the slog.Handler used by the cfgtree CLI.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// Masked replaces the value of masked attributes.
const Masked = "****"

type options struct {
	level  slog.Leveler
	format string
	mask   map[string]struct{}
}

// Option configures the handler returned by [NewHandler].
type Option func(*options)

// Level sets the minimum level of records which are written.
func Level(l slog.Leveler) Option {
	return func(o *options) {
		o.level = l
	}
}

// Format selects between "text" and "json" output.
func Format(format string) Option {
	return func(o *options) {
		o.format = format
	}
}

// Mask hides the values of attributes with the given keys. Keys are
// matched at any depth, so masking "password" also hides a password
// argument logged in the "args" group of a constructor call.
func Mask(keys ...string) Option {
	return func(o *options) {
		for _, k := range keys {
			o.mask[k] = struct{}{}
		}
	}
}

// UnknownFormatError occurs when the log format is neither text nor json.
type UnknownFormatError struct {
	Format string
}

// Error implements the error interface.
func (e UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown log format: %q", e.Format)
}

// NewHandler returns a [Handler] writing to w.
func NewHandler(w io.Writer, opts ...Option) (*Handler, error) {
	o := &options{
		level:  slog.LevelWarn,
		format: "text",
		mask:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}

	hopts := &slog.HandlerOptions{Level: o.level}

	var h slog.Handler
	switch strings.ToLower(o.format) {
	case "text":
		h = slog.NewTextHandler(w, hopts)
	case "json":
		h = slog.NewJSONHandler(w, hopts)
	default:
		return nil, UnknownFormatError{Format: o.format}
	}
	return &Handler{slog: h, mask: o.mask}, nil
}

// ParseLevel parses one of debug, info, warn or error.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(s))
	return l, err
}

// Handler masks attributes and correlates records with the span
// active in their context by adding its trace and span id.
type Handler struct {
	slog slog.Handler
	mask map[string]struct{}
}

// Enabled implements the slog.Handler interface.
func (h *Handler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.slog.Enabled(ctx, lvl)
}

// Handle implements the slog.Handler interface.
func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	r := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(a slog.Attr) bool {
		r.AddAttrs(h.maskAttr(a))
		return true
	})

	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		r.AddAttrs(
			slog.Group(
				"otel",
				slog.String("trace_id", spanCtx.TraceID().String()),
				slog.String("span_id", spanCtx.SpanID().String()),
			),
		)
	}
	return h.slog.Handle(ctx, r)
}

// WithAttrs implements the slog.Handler interface.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = h.maskAttr(a)
	}
	return &Handler{slog: h.slog.WithAttrs(masked), mask: h.mask}
}

// WithGroup implements the slog.Handler interface.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{slog: h.slog.WithGroup(name), mask: h.mask}
}

func (h *Handler) maskAttr(a slog.Attr) slog.Attr {
	if len(h.mask) == 0 {
		return a
	}
	if _, ok := h.mask[a.Key]; ok {
		return slog.String(a.Key, Masked)
	}

	v := a.Value.Resolve()
	if v.Kind() != slog.KindGroup {
		return a
	}
	group := v.Group()
	attrs := make([]any, len(group))
	for i, ga := range group {
		attrs[i] = h.maskAttr(ga)
	}
	return slog.Group(a.Key, attrs...)
}
