// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package cfgtree

import (
	"fmt"
	"strings"
)

// configurationError is implemented by every error the construction
// engine produces itself. These errors propagate through nested
// constructions without being wrapped in a [ConstructionError].
type configurationError interface {
	error
	configurationError()
}

// resolveError marks an error raised while the engine resolves a node,
// as opposed to one raised by a lookup inside a constructor.
type resolveError struct {
	error
}

func (e resolveError) Unwrap() error {
	return e.error
}

func (resolveError) configurationError() {}

// displayName quotes a node name unless it is synthetic, e.g. <root>.
func displayName(name string) string {
	if isSynthetic(name) {
		return name
	}
	return "'" + name + "'"
}

func isSynthetic(name string) bool {
	return strings.HasPrefix(name, "<")
}

// NotFoundError occurs when a value is looked up without a default
// and it does not exist in the configuration.
type NotFoundError struct {
	Path string
}

// Error implements the error interface.
func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", displayName(e.Path))
}

// ShapeError occurs when an operation is attempted against a value
// whose structure does not support it, e.g. indexing into a scalar
// or configuring a constructor from a sequence. Shape errors raised by
// lookups inside a constructor are wrapped in a [ConstructionError].
type ShapeError struct {
	Name     string
	Op       string
	Expected string
	Got      string
}

// Error implements the error interface.
func (e ShapeError) Error() string {
	return fmt.Sprintf("cannot %s %s: %s expected, got %s", e.Op, displayName(e.Name), e.Expected, e.Got)
}

// MissingConstructorError occurs when a node is configured without an
// explicit constructor and its mapping has no class key.
type MissingConstructorError struct {
	Name string
}

// Error implements the error interface.
func (e MissingConstructorError) Error() string {
	return fmt.Sprintf("no constructor specified for %s", displayName(e.Name))
}

func (MissingConstructorError) configurationError() {}

// InvalidConstructorError occurs when the class key of a mapping does
// not resolve to a [Constructor].
type InvalidConstructorError struct {
	Name  string
	Value any
}

// Error implements the error interface.
func (e InvalidConstructorError) Error() string {
	return fmt.Sprintf("invalid constructor for %s: %#v is not callable", displayName(e.Name), e.Value)
}

func (InvalidConstructorError) configurationError() {}

// RequiredError occurs when one or more default arguments were marked
// as [Required] but the configuration did not supply them.
type RequiredError struct {
	Name string
	Keys []string
}

// Error implements the error interface.
func (e RequiredError) Error() string {
	quoted := make([]string, len(e.Keys))
	for i, k := range e.Keys {
		quoted[i] = "'" + k + "'"
	}
	return fmt.Sprintf("required parameters not specified in %s: %s", displayName(e.Name), strings.Join(quoted, ", "))
}

func (RequiredError) configurationError() {}

// ConstructionError wraps any failure returned, or panicked, by a
// user supplied constructor.
type ConstructionError struct {
	Name        string
	Constructor string
	Cause       error
}

// Error implements the error interface.
func (e ConstructionError) Error() string {
	return fmt.Sprintf("error while configuring %s using %s: %s", displayName(e.Name), e.Constructor, e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e ConstructionError) Unwrap() error {
	return e.Cause
}

func (ConstructionError) configurationError() {}

// RegistrationError occurs when a [Constructor] can not be added to a [Registry].
type RegistrationError struct {
	Name   string
	Reason string
}

// Error implements the error interface.
func (e RegistrationError) Error() string {
	return fmt.Sprintf("failed to register constructor %q: %s", e.Name, e.Reason)
}

// NodeParamError occurs when the signature given to [NodeFunction]
// already declares the parameter the node is injected through.
type NodeParamError struct {
	Param string
}

// Error implements the error interface.
func (e NodeParamError) Error() string {
	return fmt.Sprintf("node parameter %q must not be declared in the signature", e.Param)
}

// ReadError occurs when a [Source] fails to produce a value.
type ReadError struct {
	Cause error
}

// Error implements the error interface.
func (e ReadError) Error() string {
	return fmt.Sprintf("failed to read configuration: %s", e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e ReadError) Unwrap() error {
	return e.Cause
}
