// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package cfgtree

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"runtime"
)

// Args are the named arguments given to a [Constructor].
type Args map[string]any

// Constructor builds a value from named arguments.
type Constructor interface {
	Construct(context.Context, Args) (any, error)
}

// ConstructorFunc is a func implementation of the [Constructor] interface.
type ConstructorFunc func(context.Context, Args) (any, error)

// Construct implements the [Constructor] interface.
func (f ConstructorFunc) Construct(ctx context.Context, args Args) (any, error) {
	return f(ctx, args)
}

type mappingConstructor struct{}

// Mapping is a [Constructor] which returns its arguments as a map[string]any.
var Mapping Constructor = mappingConstructor{}

func (mappingConstructor) Construct(_ context.Context, args Args) (any, error) {
	m := make(map[string]any, len(args))
	maps.Copy(m, args)
	return m, nil
}

func (mappingConstructor) String() string {
	return "Mapping"
}

// Partial is a [Constructor] with some of its arguments already bound.
// It is returned by [Node.Bind] and [Node.MaybeBind].
type Partial struct {
	node *Node
	ctor Constructor
	args Args
}

// Args returns a copy of the bound arguments.
func (p *Partial) Args() Args {
	return maps.Clone(p.args)
}

// Construct implements the [Constructor] interface. The given args are
// merged over the bound ones, so later values win.
func (p *Partial) Construct(ctx context.Context, args Args) (any, error) {
	merged := make(Args, len(p.args)+len(args))
	maps.Copy(merged, p.args)
	maps.Copy(merged, args)
	return p.node.invoke(ctx, p.ctor, merged)
}

// String implements the [fmt.Stringer] interface.
func (p *Partial) String() string {
	return "Partial(" + constructorName(p.ctor) + ")"
}

// TypeAssertionError occurs when a constructed value is not of the requested type.
type TypeAssertionError struct {
	Want string
	Got  string
}

// Error implements the error interface.
func (e TypeAssertionError) Error() string {
	return fmt.Sprintf("expected constructed value of type %s, got %s", e.Want, e.Got)
}

// As converts the result of constructing a value to T. A nil value
// yields the zero value of T.
//
//	srv, err := cfgtree.As[*Server](node.Configure(ctx, serverCtor, nil))
func As[T any](v any, err error) (T, error) {
	var zero T
	if err != nil || v == nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, TypeAssertionError{
			Want: reflect.TypeFor[T]().String(),
			Got:  fmt.Sprintf("%T", v),
		}
	}
	return t, nil
}

func constructorName(ctor Constructor) string {
	switch c := ctor.(type) {
	case *Configurable:
		return c.name
	case fmt.Stringer:
		return c.String()
	case ConstructorFunc:
		return funcName(c)
	default:
		return fmt.Sprintf("%T", ctor)
	}
}

func funcName(f any) string {
	rf := runtime.FuncForPC(reflect.ValueOf(f).Pointer())
	if rf == nil {
		return fmt.Sprintf("%T", f)
	}
	return rf.Name()
}
