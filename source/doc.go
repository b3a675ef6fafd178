// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package source provides [cfgtree.Source] implementations for common
// configuration formats.
//
// Every source produces a nested value composed only of map[string]any
// (or map[any]any for YAML mappings with non-string keys), []any and
// scalars. Integral numbers are decoded as int and all other numbers as
// float64, regardless of format.
package source
