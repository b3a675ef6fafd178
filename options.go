// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package cfgtree

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/z5labs/cfgtree"

type options struct {
	name     string
	logger   *slog.Logger
	registry *Registry
	mode     Mode
	editor   Editor
	tracer   trace.Tracer
}

// Option configures a tree of [Node]s. Options are given to the root
// and shared by all of its descendants.
type Option func(*options)

// Name sets the display name of the root node. Names starting
// with '<' are synthetic and are not quoted in diagnostics.
func Name(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// LogHandler sets the [slog.Handler] used for construction and
// unused key diagnostics.
func LogHandler(h slog.Handler) Option {
	return func(o *options) {
		o.logger = slog.New(h)
	}
}

// Constructors sets the [Registry] used to resolve string values of the
// class key into a [Constructor].
func Constructors(r *Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// Interactive enables interactive editing of configuration values
// through the given [Editor] before they are read.
func Interactive(mode Mode, editor Editor) Option {
	return func(o *options) {
		o.mode = mode
		o.editor = editor
	}
}

// TracerProvider sets the [trace.TracerProvider] used for recording
// spans around constructor invocations. The global provider is used
// by default.
func TracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracer = tp.Tracer(instrumentationName)
	}
}

func newOptions(opts ...Option) *options {
	o := &options{
		name:   "<root>",
		logger: slog.Default(),
		mode:   ModeNone,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(instrumentationName)
	}
	return o
}
