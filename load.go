// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package cfgtree

import "context"

// Source produces a nested configuration value made of maps,
// slices and scalars.
type Source interface {
	Read(context.Context) (any, error)
}

// SourceFunc is a func implementation of the [Source] interface.
type SourceFunc func(context.Context) (any, error)

// Read implements the [Source] interface.
func (f SourceFunc) Read(ctx context.Context) (any, error) {
	return f(ctx)
}

// Load reads src and wraps the result in a new root [Node].
func Load(ctx context.Context, src Source, opts ...Option) (*Node, error) {
	v, err := src.Read(ctx)
	if err != nil {
		return nil, ReadError{Cause: err}
	}
	return New(v, opts...), nil
}
