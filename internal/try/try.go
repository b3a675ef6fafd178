// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package try provides deferrable helpers for turning panics and
// close failures into returned errors.
package try

import (
	"errors"
	"fmt"
	"io"
)

// PanicError is the error a recovered panic is turned into.
type PanicError struct {
	Value any
}

// Error implements the error interface.
func (e PanicError) Error() string {
	return fmt.Sprintf("recovered from panic: %v", e.Value)
}

// Unwrap returns the panic value if it was an error.
func (e PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// Recover must be deferred. It turns a panic into a [PanicError] which
// is joined with any error already referenced by err.
func Recover(err *error) {
	r := recover()
	if r == nil {
		return
	}
	set(err, PanicError{Value: r})
}

// CloseError occurs when closing a resource fails.
type CloseError struct {
	Cause error
}

// Error implements the error interface.
func (e CloseError) Error() string {
	return fmt.Sprintf("failed to close: %s", e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e CloseError) Unwrap() error {
	return e.Cause
}

// Close must be deferred. If v is an [io.Closer] it is closed and any
// failure is joined, as a [CloseError], with the error referenced by err.
func Close(err *error, v any) {
	c, ok := v.(io.Closer)
	if !ok || c == nil {
		return
	}

	cerr := c.Close()
	if cerr == nil {
		return
	}
	set(err, CloseError{Cause: cerr})
}

func set(ref *error, err error) {
	if *ref == nil {
		*ref = err
		return
	}
	*ref = errors.Join(*ref, err)
}
