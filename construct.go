// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package cfgtree

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"reflect"
	"slices"

	"github.com/z5labs/cfgtree/internal/try"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ClassKey is the mapping key which names the constructor of a node.
const ClassKey = "class"

// Configure constructs a value from this node.
//
// If the wrapped value is a mapping, its keys are merged over defaults,
// so configuration wins, and given to the constructor. The constructor
// is ctor unless the mapping has a class key, which always takes
// precedence. A [Missing] value is treated as an empty mapping while an
// explicit nil value returns nil without constructing anything. Any
// other value is returned as is, unless a constructor or defaults were
// given, in which case a [ShapeError] is returned.
//
// Defaults set to [Required] must be present in the mapping. Errors
// returned by the constructor are wrapped in a [ConstructionError].
func (n *Node) Configure(ctx context.Context, ctor Constructor, defaults Args) (any, error) {
	return n.configure(ctx, ctor, defaults, false, false)
}

// Bind is like [Node.Configure] but returns a [Partial] with the
// resolved arguments bound instead of constructing the value.
func (n *Node) Bind(ctx context.Context, ctor Constructor, defaults Args) (*Partial, error) {
	return n.bind(ctx, ctor, defaults, false)
}

// MaybeConfigure is like [Node.Configure] but returns nil without
// constructing anything if the value is [Missing].
func (n *Node) MaybeConfigure(ctx context.Context, ctor Constructor, defaults Args) (any, error) {
	return n.configure(ctx, ctor, defaults, true, false)
}

// MaybeBind is like [Node.Bind] but returns nil if the value is [Missing].
func (n *Node) MaybeBind(ctx context.Context, ctor Constructor, defaults Args) (*Partial, error) {
	return n.bind(ctx, ctor, defaults, true)
}

func (n *Node) bind(ctx context.Context, ctor Constructor, defaults Args, maybe bool) (*Partial, error) {
	v, err := n.configure(ctx, ctor, defaults, maybe, true)
	if err != nil || v == nil {
		return nil, err
	}
	return v.(*Partial), nil
}

// ConfigureList constructs one value per item of the wrapped sequence,
// as if [Node.Configure] was called on the child node of each item.
// A [Missing] or nil value returns nil.
func (n *Node) ConfigureList(ctx context.Context, ctor Constructor, defaults Args) ([]any, error) {
	if n.err != nil {
		return nil, n.err
	}
	n.edit(ctx, ctor, defaults, []any{})
	if isMissing(n.value) {
		return nil, nil
	}

	v, err := n.lookup(nil, NoDefault, true)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, resolveError{ShapeError{
			Name:     n.name,
			Op:       "configure list from",
			Expected: "sequence",
			Got:      typeName(v),
		}}
	}

	results := make([]any, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		r, err := n.Child(i).resolve(ctx, rv.Index(i).Interface(), ctor, defaults, false)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

func (n *Node) configure(ctx context.Context, ctor Constructor, defaults Args, maybe, bind bool) (any, error) {
	if n.err != nil {
		return nil, n.err
	}
	n.edit(ctx, ctor, defaults, map[string]any{})

	if maybe && isMissing(n.value) {
		n.markUsed()
		return nil, nil
	}

	v, err := n.lookup(nil, map[string]any{}, true)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return n.resolve(ctx, v, ctor, defaults, bind)
}

func (n *Node) resolve(ctx context.Context, v any, ctor Constructor, defaults Args, bind bool) (any, error) {
	cfg, isMapping, err := n.mapping(v)
	if err != nil {
		return nil, err
	}
	if !isMapping {
		if ctor != nil || len(defaults) > 0 || bind {
			return nil, resolveError{ShapeError{
				Name:     n.name,
				Op:       "configure",
				Expected: "mapping",
				Got:      typeName(v),
			}}
		}
		return v, nil
	}

	if raw, ok := cfg[ClassKey]; ok || ctor == nil {
		if !ok {
			return nil, MissingConstructorError{Name: n.name}
		}
		delete(cfg, ClassKey)
		n.markKey(ClassKey)

		ctor, err = n.constructorOf(raw)
		if err != nil {
			return nil, err
		}
	}

	var missing []string
	for k, d := range defaults {
		if d != Required {
			continue
		}
		if _, ok := cfg[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return nil, RequiredError{Name: n.name, Keys: missing}
	}

	args := make(Args, len(defaults)+len(cfg))
	maps.Copy(args, defaults)

	var forwarded []string
	recognized := func(string) bool { return true }
	if c, ok := ctor.(*Configurable); ok {
		names := c.recognized(cfg)
		recognized = func(k string) bool {
			_, ok := names[k]
			return ok
		}
	}
	for k, cv := range cfg {
		if !recognized(k) {
			continue
		}
		args[k] = cv
		forwarded = append(forwarded, k)
	}

	var result any
	if bind {
		n.opts.logger.DebugContext(
			ctx,
			"binding constructor",
			slog.String("node", n.name),
			slog.String("constructor", constructorName(ctor)),
			slog.Group("args", logArgs(ctor, args)...),
		)
		result = &Partial{node: n, ctor: ctor, args: args}
	} else {
		result, err = n.invoke(ctx, ctor, args)
		if err != nil {
			return nil, err
		}
	}

	for _, k := range forwarded {
		n.markKey(k)
	}
	return result, nil
}

// mapping copies v into Args if it is a map. Maps with non-string
// keys can not be forwarded to a constructor.
func (n *Node) mapping(v any) (Args, bool, error) {
	if m, ok := v.(map[string]any); ok {
		return maps.Clone(Args(m)), true, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false, nil
	}

	args := make(Args, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key()
		if k.Kind() == reflect.Interface {
			k = k.Elem()
		}
		if k.Kind() != reflect.String {
			return nil, true, resolveError{ShapeError{
				Name:     n.name,
				Op:       "configure",
				Expected: "mapping with string keys",
				Got:      "key of type " + typeName(iter.Key().Interface()),
			}}
		}
		args[k.String()] = iter.Value().Interface()
	}
	return args, true, nil
}

func (n *Node) constructorOf(raw any) (Constructor, error) {
	switch c := raw.(type) {
	case Constructor:
		return c, nil
	case func(context.Context, Args) (any, error):
		return ConstructorFunc(c), nil
	case string:
		if n.opts.registry != nil {
			if ctor, ok := n.opts.registry.Lookup(c); ok {
				return ctor, nil
			}
		}
	}
	return nil, InvalidConstructorError{Name: n.name, Value: raw}
}

// invoke calls ctor, wrapping any error which did not originate from
// the engine itself in a ConstructionError.
func (n *Node) invoke(ctx context.Context, ctor Constructor, args Args) (any, error) {
	name := constructorName(ctor)

	spanCtx, span := n.opts.tracer.Start(
		ctx,
		"cfgtree.Configure",
		trace.WithAttributes(
			attribute.String("cfgtree.node", n.name),
			attribute.String("cfgtree.constructor", name),
		),
	)
	defer span.End()

	n.opts.logger.DebugContext(
		spanCtx,
		"calling constructor",
		slog.String("node", n.name),
		slog.String("constructor", name),
		slog.Group("args", logArgs(ctor, args)...),
	)

	v, err := n.construct(spanCtx, ctor, args)
	if err == nil {
		return v, nil
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	var cerr configurationError
	if errors.As(err, &cerr) {
		return nil, err
	}
	return nil, ConstructionError{
		Name:        n.name,
		Constructor: name,
		Cause:       err,
	}
}

func (n *Node) construct(ctx context.Context, ctor Constructor, args Args) (v any, err error) {
	defer try.Recover(&err)

	if c, ok := ctor.(*Configurable); ok {
		return c.call(ctx, n, args)
	}
	return ctor.Construct(ctx, args)
}

func logArgs(ctor Constructor, args Args) []any {
	var sig Signature
	if c, ok := ctor.(*Configurable); ok {
		sig = c.sig
	}
	attrs := sig.Bind(args)
	out := make([]any, len(attrs))
	for i, attr := range attrs {
		out[i] = attr
	}
	return out
}
