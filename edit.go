// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package cfgtree

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
)

// Mode controls which nodes are offered for interactive editing.
type Mode int

const (
	// ModeNone disables interactive editing.
	ModeNone Mode = iota

	// ModeAll offers every node for editing before it is read.
	ModeAll

	// ModeMissing only offers nodes whose value is [Missing].
	ModeMissing
)

// String implements the [fmt.Stringer] interface.
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeAll:
		return "all"
	case ModeMissing:
		return "missing"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// InvalidModeError occurs when parsing an unknown interactive mode.
type InvalidModeError struct {
	Value string
}

// Error implements the error interface.
func (e InvalidModeError) Error() string {
	return fmt.Sprintf("invalid interactive mode: %q", e.Value)
}

// ParseMode parses one of "none", "all" or "missing". An empty
// string is the same as "none".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return ModeNone, nil
	case "all":
		return ModeAll, nil
	case "missing":
		return ModeMissing, nil
	default:
		return ModeNone, InvalidModeError{Value: s}
	}
}

// EditRequest describes a value being offered for editing.
type EditRequest struct {
	// Name is the display name of the node.
	Name string

	// Value is the current value of the node, which may be [Missing].
	Value any

	// Default is a skeleton suggested when Value is [Missing],
	// or [NoDefault] if there is none.
	Default any

	// Notes describe the default constructor and arguments, if any.
	Notes []string
}

// Editor edits configuration values on behalf of a user.
type Editor interface {
	Edit(context.Context, EditRequest) (any, error)
}

// EditorFunc is a func implementation of the [Editor] interface.
type EditorFunc func(context.Context, EditRequest) (any, error)

// Edit implements the [Editor] interface.
func (f EditorFunc) Edit(ctx context.Context, req EditRequest) (any, error) {
	return f(ctx, req)
}

func (n *Node) edit(ctx context.Context, ctor Constructor, defaults Args, def any) {
	if n.opts.editor == nil || n.err != nil {
		return
	}
	switch n.opts.mode {
	case ModeAll:
	case ModeMissing:
		if !isMissing(n.value) {
			return
		}
	default:
		return
	}

	var notes []string
	if ctor != nil {
		notes = append(notes, "Default constructor: "+constructorName(ctor))
	}
	if len(defaults) > 0 {
		kvs := make([]string, 0, len(defaults))
		for _, k := range slices.Sorted(maps.Keys(defaults)) {
			kvs = append(kvs, fmt.Sprintf("%s=%v", k, defaults[k]))
		}
		notes = append(notes, "Default args: "+strings.Join(kvs, ", "))
	}

	v, err := n.opts.editor.Edit(ctx, EditRequest{
		Name:    displayName(n.name),
		Value:   n.value,
		Default: def,
		Notes:   notes,
	})
	if err != nil {
		n.opts.logger.DebugContext(ctx, "configuration left unedited", slog.String("node", n.name), slog.Any("error", err))
		return
	}
	n.value = v
	n.children = nil
	n.used = nil
}
