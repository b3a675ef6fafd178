// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package cfgtree

import (
	"context"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"strings"
)

// Params selects which configuration keys are forwarded to a [Configurable].
type Params struct {
	all   bool
	names []string
}

var (
	// All forwards every key the [Signature] accepts, or every key
	// if the signature has a [VarKeyword] parameter.
	All = Params{all: true}

	// NoParams forwards no keys. The target reads its configuration
	// through its [Node] instead.
	NoParams = Params{}
)

// Only forwards exactly the given keys.
func Only(names ...string) Params {
	return Params{names: slices.Clone(names)}
}

// ParamKind describes how a parameter accepts arguments.
type ParamKind int

const (
	Normal ParamKind = iota
	VarPositional
	VarKeyword
	PositionalOnly
)

// Param is a single declared parameter of a constructor.
type Param struct {
	Name string
	Kind ParamKind
}

// Signature declares the parameters a constructor accepts.
type Signature []Param

// Sig builds a [Signature] from parameter names. A name prefixed
// with "**" is a [VarKeyword] parameter and one prefixed with "*"
// is a [VarPositional] parameter.
func Sig(names ...string) Signature {
	sig := make(Signature, 0, len(names))
	for _, name := range names {
		switch {
		case strings.HasPrefix(name, "**"):
			sig = append(sig, Param{Name: name[2:], Kind: VarKeyword})
		case strings.HasPrefix(name, "*"):
			sig = append(sig, Param{Name: name[1:], Kind: VarPositional})
		default:
			sig = append(sig, Param{Name: name, Kind: Normal})
		}
	}
	return sig
}

// VarKeyword reports whether the signature accepts arbitrary named arguments.
func (s Signature) VarKeyword() bool {
	return slices.ContainsFunc(s, func(p Param) bool {
		return p.Kind == VarKeyword
	})
}

// Names returns the names which can be given as named arguments.
func (s Signature) Names() []string {
	var names []string
	for _, p := range s {
		if p.Kind == Normal {
			names = append(names, p.Name)
		}
	}
	return names
}

// Has reports whether name is declared by the signature.
func (s Signature) Has(name string) bool {
	return slices.ContainsFunc(s, func(p Param) bool {
		return p.Name == name
	})
}

// Bind orders args by the signature for logging. Declared parameters
// come first, followed by any remaining args sorted by name.
func (s Signature) Bind(args Args) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(args))
	seen := make(map[string]struct{}, len(args))
	for _, p := range s {
		v, ok := args[p.Name]
		if !ok {
			continue
		}
		attrs = append(attrs, slog.Any(p.Name, v))
		seen[p.Name] = struct{}{}
	}
	for _, k := range slices.Sorted(maps.Keys(args)) {
		if _, ok := seen[k]; ok {
			continue
		}
		attrs = append(attrs, slog.Any(k, args[k]))
	}
	return attrs
}

// Configurable marks a constructor as taking part in construction from
// a [Node]. The engine forwards only the recognised configuration keys
// to it and gives it the node it was configured from.
type Configurable struct {
	name      string
	nodeParam string
	params    Params
	sig       Signature
	build     func(context.Context, *Node, Args) (any, error)
	fallback  *Node
}

// MarkOption configures a [Configurable].
type MarkOption func(*Configurable)

// WithParams sets which configuration keys are forwarded. [All] is the default.
func WithParams(p Params) MarkOption {
	return func(c *Configurable) {
		c.params = p
	}
}

// WithNodeParam sets the name of the parameter the node is given
// through. Arguments of the same name are never forwarded.
func WithNodeParam(name string) MarkOption {
	return func(c *Configurable) {
		c.nodeParam = name
	}
}

// Named sets the name used for the constructor in logs and errors.
func Named(name string) MarkOption {
	return func(c *Configurable) {
		c.name = name
	}
}

func newConfigurable(name string, sig Signature, build func(context.Context, *Node, Args) (any, error), opts ...MarkOption) *Configurable {
	c := &Configurable{
		name:     name,
		params:   All,
		sig:      sig,
		build:    build,
		fallback: New(Missing, Name("<default>")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Function marks fn as configurable. fn does not receive the node it
// is configured from, use [NodeFunction] for that.
func Function(fn func(context.Context, Args) (any, error), sig Signature, opts ...MarkOption) *Configurable {
	build := func(ctx context.Context, _ *Node, args Args) (any, error) {
		return fn(ctx, args)
	}
	return newConfigurable(funcName(fn), sig, build, opts...)
}

// NodeFunction marks fn as configurable. fn receives the node it is
// configured from, which it can use to configure sub-components. The
// node parameter, "_cfg" by default, must not be declared in sig.
func NodeFunction(fn func(context.Context, *Node, Args) (any, error), sig Signature, opts ...MarkOption) (*Configurable, error) {
	c := newConfigurable(funcName(fn), sig, fn, append([]MarkOption{WithNodeParam("_cfg")}, opts...)...)
	if c.nodeParam != "" && sig.Has(c.nodeParam) {
		return nil, NodeParamError{Param: c.nodeParam}
	}
	return c, nil
}

// Construct implements the [Constructor] interface. Called directly,
// outside of [Node.Configure], the target is given a node named
// <default> which wraps [Missing].
func (c *Configurable) Construct(ctx context.Context, args Args) (any, error) {
	return c.call(ctx, c.fallback, maps.Clone(args))
}

// String implements the [fmt.Stringer] interface.
func (c *Configurable) String() string {
	return c.name
}

// Signature returns the declared signature.
func (c *Configurable) Signature() Signature {
	return slices.Clone(c.sig)
}

func (c *Configurable) call(ctx context.Context, n *Node, args Args) (any, error) {
	if args == nil {
		args = make(Args)
	}
	if c.nodeParam != "" {
		delete(args, c.nodeParam)
	}
	return c.build(ctx, n, args)
}

// recognized returns the configuration keys forwarded to c.
func (c *Configurable) recognized(cfg Args) map[string]struct{} {
	var names []string
	switch {
	case c.params.all && c.sig.VarKeyword():
		names = slices.Collect(maps.Keys(cfg))
	case c.params.all:
		names = c.sig.Names()
	default:
		names = c.params.names
	}

	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == c.nodeParam {
			continue
		}
		set[name] = struct{}{}
	}
	return set
}

// NodeSetter is implemented by class style targets, see [Class].
type NodeSetter interface {
	SetNode(*Node)
}

// Initializer may be implemented by class style targets. Init runs
// after the node has been set and the arguments have been decoded.
type Initializer interface {
	Init(context.Context) error
}

// Slot is meant to be embedded in class style targets so they
// implement [NodeSetter].
type Slot struct {
	node *Node
}

// SetNode implements the [NodeSetter] interface.
func (s *Slot) SetNode(n *Node) {
	s.node = n
}

// Node returns the node the value was configured from. A value
// which was never configured gets a node named <default> wrapping
// [Missing].
func (s *Slot) Node() *Node {
	if s.node == nil {
		s.node = New(Missing, Name("<default>"))
	}
	return s.node
}

// Class marks the struct type T as configurable. Constructing it
// allocates a new T, gives it its node through SetNode and then decodes
// the arguments into its fields using their config struct tags. If *T
// implements [Initializer], Init is called last.
//
// The signature is derived from the exported fields. A field tagged with
// ",remain" collects all other arguments, which makes the signature
// accept arbitrary keys.
func Class[T any, PT interface {
	*T
	NodeSetter
}](opts ...MarkOption) *Configurable {
	sig := structSignature(reflect.TypeFor[T]())
	build := func(ctx context.Context, n *Node, args Args) (any, error) {
		v := PT(new(T))
		v.SetNode(n)
		if err := decode(args, v); err != nil {
			return nil, err
		}
		if i, ok := any(v).(Initializer); ok {
			if err := i.Init(ctx); err != nil {
				return nil, err
			}
		}
		return v, nil
	}
	return newConfigurable(reflect.TypeFor[T]().String(), sig, build, opts...)
}

func structSignature(t reflect.Type) Signature {
	if t.Kind() != reflect.Struct {
		return nil
	}

	var sig Signature
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Anonymous {
			continue
		}
		tag := f.Tag.Get("config")
		if tag == "-" {
			continue
		}
		name, flags, _ := strings.Cut(tag, ",")
		if name == "" {
			name = f.Name
		}
		kind := Normal
		if slices.Contains(strings.Split(flags, ","), "remain") {
			kind = VarKeyword
		}
		sig = append(sig, Param{Name: name, Kind: kind})
	}
	return sig
}
