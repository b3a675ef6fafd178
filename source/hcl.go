// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package source

import (
	"context"
	"fmt"
	"math/big"

	"github.com/z5labs/cfgtree"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// Hcl represents a Source where its underlying format is HCL native syntax.
//
// Attributes become mapping keys. Blocks become nested mappings keyed by
// their type and then by each of their labels, e.g.
//
//	listener "http" {
//	  addr = ":8080"
//	}
//
// becomes {"listener": {"http": {"addr": ":8080"}}}. Repeated blocks
// without labels become a sequence.
type Hcl struct {
	filename string
	src      []byte
	vars     map[string]cty.Value
}

var _ cfgtree.Source = Hcl{}

// HclOption configures a [Hcl] source.
type HclOption func(*Hcl)

// HclVariable makes v available to expressions under the given name.
func HclVariable(name string, v cty.Value) HclOption {
	return func(h *Hcl) {
		h.vars[name] = v
	}
}

// FromHcl returns a source which will read its config from src. The
// filename is only used in diagnostics.
func FromHcl(filename string, src []byte, opts ...HclOption) Hcl {
	h := Hcl{
		filename: filename,
		src:      src,
		vars:     make(map[string]cty.Value),
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// InvalidHclError occurs if the source is not valid HCL or one of
// its expressions fails to evaluate.
type InvalidHclError struct {
	Diagnostics hcl.Diagnostics
}

// Error implements the error interface.
func (e InvalidHclError) Error() string {
	return fmt.Sprintf("invalid hcl: %s", e.Diagnostics.Error())
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e InvalidHclError) Unwrap() error {
	return e.Diagnostics
}

// Read implements the [cfgtree.Source] interface.
func (src Hcl) Read(ctx context.Context) (any, error) {
	file, diags := hclsyntax.ParseConfig(src.src, src.filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, InvalidHclError{Diagnostics: diags}
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("unexpected hcl body type: %T", file.Body)
	}

	ectx := &hcl.EvalContext{
		Variables: src.vars,
	}
	return bodyToMap(body, ectx)
}

func bodyToMap(body *hclsyntax.Body, ectx *hcl.EvalContext) (map[string]any, error) {
	m := make(map[string]any, len(body.Attributes)+len(body.Blocks))
	for name, attr := range body.Attributes {
		v, diags := attr.Expr.Value(ectx)
		if diags.HasErrors() {
			return nil, InvalidHclError{Diagnostics: diags}
		}
		nv, err := ctyToNative(v)
		if err != nil {
			return nil, fmt.Errorf("in attribute '%s': %w", name, err)
		}
		m[name] = nv
	}

	for _, block := range body.Blocks {
		bm, err := bodyToMap(block.Body, ectx)
		if err != nil {
			return nil, err
		}

		if len(block.Labels) == 0 {
			switch existing := m[block.Type].(type) {
			case map[string]any:
				m[block.Type] = []any{existing, bm}
			case []any:
				m[block.Type] = append(existing, bm)
			default:
				m[block.Type] = bm
			}
			continue
		}

		parent, _ := m[block.Type].(map[string]any)
		if parent == nil {
			parent = make(map[string]any)
			m[block.Type] = parent
		}
		last := len(block.Labels) - 1
		for _, label := range block.Labels[:last] {
			child, _ := parent[label].(map[string]any)
			if child == nil {
				child = make(map[string]any)
				parent[label] = child
			}
			parent = child
		}
		parent[block.Labels[last]] = bm
	}
	return m, nil
}

// ctyToNative recursively converts a cty.Value to its most natural Go counterpart.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			i, acc := bf.Int64()
			if acc == big.Exact {
				return int(i), nil
			}
		}
		f, _ := bf.Float64()
		return f, nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		var slice []any
		it := v.ElementIterator()
		for it.Next() {
			_, ev := it.Element()
			nv, err := ctyToNative(ev)
			if err != nil {
				return nil, err
			}
			slice = append(slice, nv)
		}
		if slice == nil {
			slice = []any{}
		}
		return slice, nil
	case ty.IsObjectType() || ty.IsMapType():
		m := make(map[string]any)
		it := v.ElementIterator()
		for it.Next() {
			k, ev := it.Element()
			ks := k.AsString()
			nv, err := ctyToNative(ev)
			if err != nil {
				return nil, fmt.Errorf("in attribute '%s': %w", ks, err)
			}
			m[ks] = nv
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported cty type: %s", ty.FriendlyName())
	}
}
