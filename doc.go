// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package cfgtree constructs objects from hierarchical configuration.
//
// A configuration tree is a nested value made of maps, slices and scalars,
// typically read from a file by one of the sources in the source package.
// The tree is navigated through [Node]s, which wrap a value together with
// its display name, e.g. server.listeners[0], and record which keys were
// actually read so unused keys can be reported later.
//
// # Navigation
//
// Children are created lazily and cached, so looking up a key which does
// not exist never fails by itself. The child simply wraps [Missing] and
// only reading a value from it returns a [NotFoundError]:
//
//	root := cfgtree.New(v)
//	addr, err := root.Key("server").Key("addr").ValueOr(":8080")
//
// # Construction
//
// [Node.Configure] calls a [Constructor] with the keys of a mapping as
// named arguments. Configuration wins over the defaults given by the
// caller, and a mapping may override the constructor itself through its
// class key:
//
//	db:
//	  class: postgres
//	  url: postgres://localhost/app
//
// Constructors which want to configure their own sub-components are
// marked with [Function], [NodeFunction] or [Class]. Only the keys they
// declare are forwarded, everything else is left for them to read from
// the node they are given:
//
//	type Server struct {
//	    cfgtree.Slot
//
//	    Addr string `config:"addr"`
//	    DB   *DB    `config:"-"`
//	}
//
//	func (s *Server) Init(ctx context.Context) (err error) {
//	    s.DB, err = cfgtree.As[*DB](s.Node().Key("db").Configure(ctx, newDB, nil))
//	    return err
//	}
//
// [Node.Bind] resolves the arguments the same way but returns a [Partial],
// which defers the call until the remaining arguments are known.
//
// # Unused keys
//
// Every key which was read, or forwarded to a constructor, is marked as
// used. [Node.UnusedKeys] lists all other keys so typos in configuration
// files are caught instead of silently ignored.
//
// # Errors
//
// Errors raised by the engine itself, such as a [ShapeError] or a
// [RequiredError], are returned as is. Any other error returned by a
// constructor, including a recovered panic, is wrapped in a
// [ConstructionError] naming the node and constructor involved. Each
// constructor call is recorded as an OpenTelemetry span.
package cfgtree
