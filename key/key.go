// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package key provides types for addressing positions within nested configuration values.
package key

import (
	"fmt"
	"strconv"
	"strings"
)

// Keyer is a common interface all key types must implement.
type Keyer interface {
	Key() string
}

// Name represents a single mapping key.
type Name string

// Key implements the [Keyer] interface.
func (k Name) Key() string {
	return string(k)
}

// Index represents a single sequence index.
type Index int

// Key implements the [Keyer] interface.
func (k Index) Key() string {
	return "[" + strconv.Itoa(int(k)) + "]"
}

// Chain represents nested keys.
type Chain []Keyer

// Key implements the [Keyer] interface. Names are joined with
// a '.' while bracketed keys, such as indices, are appended
// directly, e.g. a.b[0].c.
func (k Chain) Key() string {
	var sb strings.Builder
	for i, kk := range k {
		s := kk.Key()
		if i > 0 && !strings.HasPrefix(s, "[") {
			sb.WriteByte('.')
		}
		sb.WriteString(s)
	}
	return sb.String()
}

// Of returns the [Keyer] for a raw key. Strings become a [Name],
// ints become an [Index] and anything else is formatted in brackets,
// e.g. [1.5].
func Of(v any) Keyer {
	switch x := v.(type) {
	case Keyer:
		return x
	case string:
		return Name(x)
	case int:
		return Index(x)
	default:
		return Name("[" + fmt.Sprint(x) + "]")
	}
}

// Raw returns the raw map key or sequence index represented by k.
func Raw(k Keyer) any {
	switch x := k.(type) {
	case Name:
		return string(x)
	case Index:
		return int(x)
	default:
		return k.Key()
	}
}

// InvalidPathError occurs when a path can not be parsed into a [Chain].
type InvalidPathError struct {
	Path   string
	Offset int
	Reason string
}

// Error implements the error interface.
func (e InvalidPathError) Error() string {
	return fmt.Sprintf("invalid key path %q at offset %d: %s", e.Path, e.Offset, e.Reason)
}

// Parse parses a path such as a.b[0].c into a [Chain]. An empty
// path results in an empty [Chain].
func Parse(path string) (Chain, error) {
	var chain Chain
	i := 0
	for i < len(path) {
		switch path[i] {
		case '[':
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				return nil, InvalidPathError{Path: path, Offset: i, Reason: "unterminated index"}
			}
			n, err := strconv.Atoi(path[i+1 : i+end])
			if err != nil || n < 0 {
				return nil, InvalidPathError{Path: path, Offset: i, Reason: "index must be a non-negative integer"}
			}
			chain = append(chain, Index(n))
			i += end + 1
		case '.':
			return nil, InvalidPathError{Path: path, Offset: i, Reason: "empty name"}
		default:
			j := i
			for j < len(path) && path[j] != '.' && path[j] != '[' {
				j++
			}
			chain = append(chain, Name(path[i:j]))
			i = j
		}

		if i < len(path) && path[i] == '.' {
			i++
			if i == len(path) {
				return nil, InvalidPathError{Path: path, Offset: i - 1, Reason: "trailing separator"}
			}
		}
	}
	return chain, nil
}
