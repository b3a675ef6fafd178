// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"

	"github.com/z5labs/cfgtree"
)

func newRegistry() *cfgtree.Registry {
	r := cfgtree.NewRegistry()
	r.MustRegister("mapping", cfgtree.Mapping)
	r.MustRegister("resolve", resolver())
	return r
}

// resolver configures every nested mapping with itself, so class keys
// anywhere below the configured node are resolved through the registry.
func resolver() *cfgtree.Configurable {
	var r *cfgtree.Configurable
	r, err := cfgtree.NodeFunction(func(ctx context.Context, n *cfgtree.Node, args cfgtree.Args) (any, error) {
		out := make(map[string]any, len(args))
		for k, v := range args {
			rv, err := resolve(ctx, n.Key(k), v, r)
			if err != nil {
				return nil, err
			}
			out[k] = rv
		}
		return out, nil
	}, cfgtree.Sig("**kwargs"), cfgtree.Named("resolve"))
	if err != nil {
		panic(err)
	}
	return r
}

func resolve(ctx context.Context, n *cfgtree.Node, v any, r cfgtree.Constructor) (any, error) {
	switch x := v.(type) {
	case map[string]any, map[any]any:
		return n.Configure(ctx, r, nil)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			rv, err := resolve(ctx, n.Index(i), item, r)
			if err != nil {
				return nil, err
			}
			out[i] = rv
		}
		return out, nil
	default:
		return n.ValueOr(v)
	}
}
