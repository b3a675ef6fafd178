// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package cfgtree

import (
	"cmp"
	"context"
	"fmt"
	"iter"
	"log/slog"
	"reflect"
	"slices"
	"strings"

	"github.com/z5labs/cfgtree/key"
)

// Node wraps a single position within a nested configuration value.
//
// Children are created lazily and memoised, so looking up the same key
// twice returns the same *Node. Every read is recorded against the node
// it was made through, which allows [Node.UnusedKeys] to report
// configuration which was never consulted.
//
// A tree of nodes is not safe for concurrent use.
type Node struct {
	value     any
	name      string
	parent    *Node
	parentKey any
	children  map[any]*Node
	used      map[any]struct{}
	opts      *options

	// err is set for children of values which can not be indexed.
	err error
}

// New returns the root [Node] of a tree wrapping the given value.
// The value is typically composed of maps, slices and scalars as
// produced by a [Source].
func New(value any, opts ...Option) *Node {
	o := newOptions(opts...)
	return &Node{
		value: value,
		name:  o.name,
		opts:  o,
	}
}

// Name returns the display name of the node, e.g. a.b[0].c
func (n *Node) Name() string {
	return n.name
}

// Parent returns the node this node was looked up from, or nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Missing reports whether the node wraps the [Missing] sentinel.
func (n *Node) Missing() bool {
	return isMissing(n.value)
}

// Value returns the entire wrapped value and records this node as
// used in its parent. A [NotFoundError] is returned if the value is [Missing].
func (n *Node) Value() (any, error) {
	return n.Lookup(nil, NoDefault)
}

// ValueOr is like [Node.Value] but returns def if the value is [Missing].
func (n *Node) ValueOr(def any) (any, error) {
	return n.Lookup(nil, def)
}

// Get returns the item stored under k in the wrapped mapping or sequence.
func (n *Node) Get(k any) (any, error) {
	return n.Lookup(k, NoDefault)
}

// GetOr is like [Node.Get] but returns def if k does not exist.
func (n *Node) GetOr(k any, def any) (any, error) {
	return n.Lookup(k, def)
}

// Lookup is the general form of [Node.Value] and [Node.Get]. A nil key
// refers to the whole value and a def of [NoDefault] turns an absent
// value into a [NotFoundError]. A [ShapeError] is returned if a key is
// given and the wrapped value can not be indexed.
func (n *Node) Lookup(k any, def any) (any, error) {
	n.edit(context.Background(), nil, nil, NoDefault)
	return n.lookup(k, def, true)
}

func (n *Node) lookup(k any, def any, mark bool) (any, error) {
	if n.err != nil {
		return nil, n.err
	}
	if isMissing(n.value) {
		if def == NoDefault {
			return nil, NotFoundError{Path: n.name}
		}
		return def, nil
	}
	if k == nil {
		if mark {
			n.markUsed()
		}
		return n.value, nil
	}

	k = normalizeKey(k)
	v, found, ok := index(n.value, k)
	if !ok {
		return nil, ShapeError{
			Name:     n.name,
			Op:       fmt.Sprintf("get item %v of", k),
			Expected: "mapping or sequence",
			Got:      typeName(n.value),
		}
	}
	if !found {
		if def == NoDefault {
			return nil, NotFoundError{Path: n.keyName(k)}
		}
		return def, nil
	}
	if mark {
		n.markKey(k)
	}
	return v, nil
}

// Child returns the node for k, creating it on first access. If k does
// not exist the child wraps [Missing], so lookups can be chained through
// absent sections without failing until a value is actually read. A nil
// or non-comparable k yields a child whose every operation returns a
// [ShapeError].
func (n *Node) Child(k any) *Node {
	k = normalizeKey(k)
	if k == nil || !reflect.TypeOf(k).Comparable() {
		return &Node{
			value:  Missing,
			name:   n.keyName(k),
			parent: n,
			opts:   n.opts,
			err: ShapeError{
				Name:     n.name,
				Op:       fmt.Sprintf("get item %v of", k),
				Expected: "comparable key",
				Got:      typeName(k),
			},
		}
	}
	if c, ok := n.children[k]; ok {
		return c
	}

	v, err := n.lookup(k, Missing, false)
	c := &Node{
		value:     v,
		name:      n.keyName(k),
		parent:    n,
		parentKey: k,
		opts:      n.opts,
		err:       err,
	}
	if err != nil {
		c.value = Missing
	}
	if n.children == nil {
		n.children = make(map[any]*Node)
	}
	n.children[k] = c
	return c
}

// Key is shorthand for [Node.Child] with a mapping key.
func (n *Node) Key(name string) *Node {
	return n.Child(name)
}

// Index is shorthand for [Node.Child] with a sequence index.
func (n *Node) Index(i int) *Node {
	return n.Child(i)
}

// Walk follows the given keys through successive children.
func (n *Node) Walk(keys ...key.Keyer) *Node {
	c := n
	for _, k := range keys {
		c = c.Child(key.Raw(k))
	}
	return c
}

// At walks the path, e.g. a.b[0].c, relative to this node.
func (n *Node) At(path string) (*Node, error) {
	chain, err := key.Parse(path)
	if err != nil {
		return nil, err
	}
	return n.Walk(chain...), nil
}

// Set stores v under k in the wrapped mapping or sequence. Any cached
// child and usage record for k are discarded.
func (n *Node) Set(k any, v any) error {
	k = normalizeKey(k)
	if err := n.assign(k, v); err != nil {
		return err
	}
	n.invalidate(k)
	return nil
}

func (n *Node) assign(k any, v any) error {
	shapeErr := ShapeError{
		Name:     n.name,
		Op:       fmt.Sprintf("set item %v of", k),
		Expected: "mapping or sequence",
		Got:      typeName(n.value),
	}
	if n.err != nil {
		return n.err
	}
	if isMissing(n.value) || n.value == nil {
		return shapeErr
	}

	rv := reflect.ValueOf(n.value)
	switch rv.Kind() {
	case reflect.Map:
		if rv.IsNil() {
			return shapeErr
		}
		kv, ok := mapKey(rv.Type().Key(), k)
		if !ok {
			return shapeErr
		}
		vv, ok := assignable(rv.Type().Elem(), v)
		if !ok {
			shapeErr.Expected = rv.Type().Elem().String()
			shapeErr.Got = typeName(v)
			return shapeErr
		}
		rv.SetMapIndex(kv, vv)
		return nil
	case reflect.Slice:
		i, ok := k.(int)
		if !ok {
			return shapeErr
		}
		if i < 0 || i >= rv.Len() {
			return NotFoundError{Path: n.keyName(k)}
		}
		vv, ok := assignable(rv.Type().Elem(), v)
		if !ok {
			shapeErr.Expected = rv.Type().Elem().String()
			shapeErr.Got = typeName(v)
			return shapeErr
		}
		rv.Index(i).Set(vv)
		return nil
	default:
		return shapeErr
	}
}

// Delete removes k from the wrapped mapping. Any cached child and usage
// record for k are discarded. Items can not be deleted from sequences.
func (n *Node) Delete(k any) error {
	k = normalizeKey(k)
	if n.err != nil {
		return n.err
	}
	shapeErr := ShapeError{
		Name:     n.name,
		Op:       fmt.Sprintf("delete item %v of", k),
		Expected: "mapping",
		Got:      typeName(n.value),
	}
	if isMissing(n.value) || n.value == nil {
		return shapeErr
	}

	rv := reflect.ValueOf(n.value)
	if rv.Kind() != reflect.Map {
		return shapeErr
	}
	kv, ok := mapKey(rv.Type().Key(), k)
	if !ok || !rv.MapIndex(kv).IsValid() {
		return NotFoundError{Path: n.keyName(k)}
	}
	rv.SetMapIndex(kv, reflect.Value{})
	n.invalidate(k)
	return nil
}

func (n *Node) invalidate(k any) {
	delete(n.children, k)
	delete(n.used, k)
}

// Len returns the length of the wrapped mapping, sequence or string.
func (n *Node) Len() (int, error) {
	n.edit(context.Background(), nil, nil, NoDefault)
	if n.err != nil {
		return 0, n.err
	}
	if !isMissing(n.value) && n.value != nil {
		rv := reflect.ValueOf(n.value)
		switch rv.Kind() {
		case reflect.Map, reflect.Slice, reflect.Array, reflect.String:
			return rv.Len(), nil
		}
	}
	return 0, ShapeError{
		Name:     n.name,
		Op:       "take length of",
		Expected: "mapping, sequence or string",
		Got:      typeName(n.value),
	}
}

// Iter returns an iterator over the keys of the wrapped mapping, in
// sorted order, or over the items of the wrapped sequence. Iterating
// does not record anything as used.
func (n *Node) Iter() (iter.Seq[any], error) {
	n.edit(context.Background(), nil, nil, NoDefault)
	if n.err != nil {
		return nil, n.err
	}
	if !isMissing(n.value) && n.value != nil {
		rv := reflect.ValueOf(n.value)
		switch rv.Kind() {
		case reflect.Map:
			ks := sortedKeys(rv)
			return slices.Values(ks), nil
		case reflect.Slice, reflect.Array:
			return func(yield func(any) bool) {
				for i := 0; i < rv.Len(); i++ {
					if !yield(rv.Index(i).Interface()) {
						return
					}
				}
			}, nil
		}
	}
	return nil, ShapeError{
		Name:     n.name,
		Op:       "iterate over",
		Expected: "mapping or sequence",
		Got:      typeName(n.value),
	}
}

// Contains reports whether the wrapped mapping has the key k, the
// wrapped sequence has an item equal to k or the wrapped string has
// the substring k. It is always false for a [Missing] value.
func (n *Node) Contains(k any) (bool, error) {
	n.edit(context.Background(), nil, nil, NoDefault)
	if n.err != nil {
		return false, n.err
	}
	if isMissing(n.value) {
		return false, nil
	}
	k = normalizeKey(k)

	shapeErr := ShapeError{
		Name:     n.name,
		Op:       "test membership in",
		Expected: "mapping, sequence or string",
		Got:      typeName(n.value),
	}
	if n.value == nil {
		return false, shapeErr
	}
	rv := reflect.ValueOf(n.value)
	switch rv.Kind() {
	case reflect.Map:
		_, found, _ := index(n.value, k)
		return found, nil
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if reflect.DeepEqual(rv.Index(i).Interface(), k) {
				return true, nil
			}
		}
		return false, nil
	case reflect.String:
		s, ok := k.(string)
		return ok && strings.Contains(rv.String(), s), nil
	default:
		return false, shapeErr
	}
}

// Truthy reports whether the wrapped value is present and not empty or
// zero. Missing, nil, false, zero numbers and empty strings, mappings
// and sequences are all falsy.
func (n *Node) Truthy() bool {
	n.edit(context.Background(), nil, nil, NoDefault)
	if n.err != nil || isMissing(n.value) || n.value == nil {
		return false
	}
	rv := reflect.ValueOf(n.value)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.String:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	default:
		return !rv.IsZero()
	}
}

// String implements the [fmt.Stringer] interface.
func (n *Node) String() string {
	v := "<missing>"
	if !isMissing(n.value) {
		v = fmt.Sprintf("%v", n.value)
	}
	if isSynthetic(n.name) {
		return fmt.Sprintf("Node(%s)", v)
	}
	return fmt.Sprintf("Node(%s, name=%s)", v, displayName(n.name))
}

// UnusedKeys reports the paths of configuration keys which were never
// read. A key whose subtree was partially read is reported as the
// unused keys within it, while a key nothing under which was read is
// reported once by itself. If warn is true and unused keys are found,
// they are logged at the warn level.
func (n *Node) UnusedKeys(warn bool) []string {
	unused := n.unusedKeys()
	if warn && len(unused) > 0 {
		n.opts.logger.Warn(
			"found unused configuration keys",
			slog.Int("count", len(unused)),
			slog.Any("keys", unused),
		)
	}
	return unused
}

func (n *Node) unusedKeys() []string {
	if n.err != nil || isMissing(n.value) || n.value == nil {
		return nil
	}

	var ks []any
	rv := reflect.ValueOf(n.value)
	switch rv.Kind() {
	case reflect.Map:
		ks = sortedKeys(rv)
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			ks = append(ks, i)
		}
	default:
		return nil
	}

	var unused []string
	for _, k := range ks {
		k = normalizeKey(k)
		if c, ok := n.children[k]; ok && c.hasUsedKeys() {
			unused = append(unused, c.unusedKeys()...)
			continue
		}
		if _, ok := n.used[k]; !ok {
			unused = append(unused, n.keyName(k))
		}
	}
	return unused
}

func (n *Node) hasUsedKeys() bool {
	if len(n.used) > 0 {
		return true
	}
	for _, c := range n.children {
		if c.hasUsedKeys() {
			return true
		}
	}
	return false
}

// markUsed records this node's key as used in its parent.
func (n *Node) markUsed() {
	if n.parent == nil || n.parentKey == nil {
		return
	}
	n.parent.markKey(n.parentKey)
}

func (n *Node) markKey(k any) {
	if n.used == nil {
		n.used = make(map[any]struct{})
	}
	n.used[k] = struct{}{}
}

func (n *Node) keyName(k any) string {
	kk := key.Of(k)
	if isSynthetic(n.name) {
		return kk.Key()
	}
	return key.Chain{key.Name(n.name), kk}.Key()
}

func normalizeKey(k any) any {
	switch x := k.(type) {
	case key.Name:
		return string(x)
	case key.Index:
		return int(x)
	default:
		return k
	}
}

// index looks up k in v. ok is false if v can not be indexed at all.
func index(v any, k any) (item any, found bool, ok bool) {
	switch x := v.(type) {
	case map[string]any:
		s, isString := k.(string)
		if !isString {
			return nil, false, true
		}
		item, found = x[s]
		return item, found, true
	case []any:
		i, isInt := k.(int)
		if !isInt || i < 0 || i >= len(x) {
			return nil, false, true
		}
		return x[i], true, true
	}
	if v == nil || isMissing(v) {
		return nil, false, false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		kv, valid := mapKey(rv.Type().Key(), k)
		if !valid {
			return nil, false, true
		}
		iv := rv.MapIndex(kv)
		if !iv.IsValid() {
			return nil, false, true
		}
		return iv.Interface(), true, true
	case reflect.Slice, reflect.Array:
		i, isInt := k.(int)
		if !isInt || i < 0 || i >= rv.Len() {
			return nil, false, true
		}
		return rv.Index(i).Interface(), true, true
	default:
		return nil, false, false
	}
}

func mapKey(t reflect.Type, k any) (reflect.Value, bool) {
	if k == nil {
		return reflect.Value{}, false
	}
	kv := reflect.ValueOf(k)
	if !kv.Type().Comparable() {
		return reflect.Value{}, false
	}
	if kv.Type().AssignableTo(t) {
		return kv, true
	}
	if kv.Kind() == reflect.String && t.Kind() == reflect.String {
		return kv.Convert(t), true
	}
	return reflect.Value{}, false
}

func assignable(t reflect.Type, v any) (reflect.Value, bool) {
	if v == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Map, reflect.Slice, reflect.Pointer, reflect.Func, reflect.Chan:
			return reflect.Zero(t), true
		}
		return reflect.Value{}, false
	}
	vv := reflect.ValueOf(v)
	if !vv.Type().AssignableTo(t) {
		return reflect.Value{}, false
	}
	return vv, true
}

func sortedKeys(rv reflect.Value) []any {
	ks := make([]any, 0, rv.Len())
	for _, kv := range rv.MapKeys() {
		ks = append(ks, kv.Interface())
	}
	slices.SortFunc(ks, compareKeys)
	return ks
}

func compareKeys(a, b any) int {
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case int:
		if y, ok := b.(int); ok {
			return cmp.Compare(x, y)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func typeName(v any) string {
	switch {
	case isMissing(v):
		return "missing value"
	case v == nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}
