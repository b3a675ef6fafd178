// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package source

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type readFunc func([]byte) (int, error)

func (f readFunc) Read(b []byte) (int, error) {
	return f(b)
}

type closeTracker struct {
	*strings.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func TestYaml_Read(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the underlying io.Reader fails", func(t *testing.T) {
			readErr := errors.New("failed to read")
			r := readFunc(func(b []byte) (int, error) {
				return 0, readErr
			})

			_, err := FromYaml(r).Read(context.Background())
			if !assert.ErrorIs(t, err, readErr) {
				return
			}
		})

		t.Run("if the underlying io.Reader contains invalid YAML", func(t *testing.T) {
			r := strings.NewReader(`hello: [world`)

			_, err := FromYaml(r).Read(context.Background())

			var ierr InvalidYamlError
			if !assert.ErrorAs(t, err, &ierr) {
				return
			}
			if !assert.NotEmpty(t, ierr.Error()) {
				return
			}
			if !assert.Error(t, ierr.Unwrap()) {
				return
			}
		})
	})

	t.Run("will return a nested value", func(t *testing.T) {
		t.Run("if the YAML is a mapping", func(t *testing.T) {
			r := &closeTracker{Reader: strings.NewReader(`
a: 1
b:
  - x: true
  - 2.5
c: null
`)}

			v, err := FromYaml(r).Read(context.Background())
			if !assert.Nil(t, err) {
				return
			}

			expected := map[string]any{
				"a": 1,
				"b": []any{
					map[string]any{"x": true},
					2.5,
				},
				"c": nil,
			}
			if !assert.Equal(t, expected, v) {
				return
			}
			assert.True(t, r.closed)
		})

		t.Run("if the YAML is empty", func(t *testing.T) {
			v, err := FromYaml(strings.NewReader("")).Read(context.Background())
			if !assert.Nil(t, err) {
				return
			}
			assert.Nil(t, v)
		})
	})
}
