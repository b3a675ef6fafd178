// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package cfgtree

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Error(t *testing.T) {
	testCases := []struct {
		Name     string
		Err      error
		Expected string
	}{
		{
			Name:     "not found with a synthetic name",
			Err:      NotFoundError{Path: "<root>"},
			Expected: "<root> not found",
		},
		{
			Name:     "not found",
			Err:      NotFoundError{Path: "a.b[0]"},
			Expected: "'a.b[0]' not found",
		},
		{
			Name:     "shape",
			Err:      ShapeError{Name: "a", Op: "get item b of", Expected: "mapping or sequence", Got: "int"},
			Expected: "cannot get item b of 'a': mapping or sequence expected, got int",
		},
		{
			Name:     "required",
			Err:      RequiredError{Name: "db", Keys: []string{"url", "user"}},
			Expected: "required parameters not specified in 'db': 'url', 'user'",
		},
		{
			Name:     "construction",
			Err:      ConstructionError{Name: "db", Constructor: "newDB", Cause: errors.New("dial failed")},
			Expected: "error while configuring 'db' using newDB: dial failed",
		},
		{
			Name:     "invalid constructor",
			Err:      InvalidConstructorError{Name: "<root>", Value: "unknown"},
			Expected: `invalid constructor for <root>: "unknown" is not callable`,
		},
	}

	for _, testCase := range testCases {
		t.Run("will format "+testCase.Name, func(t *testing.T) {
			assert.Equal(t, testCase.Expected, testCase.Err.Error())
		})
	}
}

func TestSentinel_String(t *testing.T) {
	t.Run("will print the sentinel name", func(t *testing.T) {
		if !assert.Equal(t, "MISSING", Missing.String()) {
			return
		}
		if !assert.Equal(t, "NO_DEFAULT", NoDefault.String()) {
			return
		}
		assert.Equal(t, "REQUIRED", Required.String())
	})
}
