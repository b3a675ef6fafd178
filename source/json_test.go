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

func TestJson_Read(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the underlying io.Reader fails", func(t *testing.T) {
			readErr := errors.New("failed to read")
			r := readFunc(func(b []byte) (int, error) {
				return 0, readErr
			})

			_, err := FromJson(r).Read(context.Background())
			if !assert.ErrorIs(t, err, readErr) {
				return
			}
		})

		t.Run("if the underlying io.Reader contains invalid JSON", func(t *testing.T) {
			r := strings.NewReader(`{"hello": `)

			_, err := FromJson(r).Read(context.Background())

			var ierr InvalidJsonError
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

	t.Run("will decode integral numbers as int", func(t *testing.T) {
		r := strings.NewReader(`{"a": 1, "b": [2, 2.5], "c": {"d": -3}}`)

		v, err := FromJson(r).Read(context.Background())
		if !assert.Nil(t, err) {
			return
		}

		expected := map[string]any{
			"a": 1,
			"b": []any{2, 2.5},
			"c": map[string]any{"d": -3},
		}
		assert.Equal(t, expected, v)
	})
}
