// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package try

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPanicError_Unwrap(t *testing.T) {
	cause := errors.New("cause")

	testCases := []struct {
		Name     string
		Value    any
		Expected error
	}{
		{Name: "if the panic value is an error", Value: cause, Expected: cause},
		{Name: "if the panic value is a string", Value: "boom"},
		{Name: "if the panic value is an int", Value: 42},
		{Name: "if the panic value is nil", Value: nil},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			err := PanicError{Value: testCase.Value}

			assert.Equal(t, testCase.Expected, err.Unwrap())
		})
	}
}

func TestRecover(t *testing.T) {
	t.Run("will return a PanicError", func(t *testing.T) {
		t.Run("if the function panics with a non-error value", func(t *testing.T) {
			f := func() (err error) {
				defer Recover(&err)
				panic(struct{ Field string }{Field: "x"})
			}

			err := f()

			var perr PanicError
			if !assert.ErrorAs(t, err, &perr) {
				return
			}
			if !assert.Nil(t, perr.Unwrap()) {
				return
			}
			assert.Equal(t, "recovered from panic: {x}", perr.Error())
		})
	})

	t.Run("will keep the returned error", func(t *testing.T) {
		t.Run("if the function panics after setting it", func(t *testing.T) {
			funcErr := errors.New("func error")
			panicErr := errors.New("panic error")
			f := func() (err error) {
				defer Recover(&err)
				err = funcErr
				panic(panicErr)
			}

			err := f()

			if !assert.ErrorIs(t, err, funcErr) {
				return
			}
			assert.ErrorIs(t, err, panicErr)
		})
	})

	t.Run("will leave the error unset", func(t *testing.T) {
		t.Run("if the function does not panic", func(t *testing.T) {
			f := func() (err error) {
				defer Recover(&err)
				return nil
			}

			assert.Nil(t, f())
		})
	})
}

type closeFunc func() error

func (f closeFunc) Close() error {
	return f()
}

func TestClose(t *testing.T) {
	t.Run("will return a CloseError", func(t *testing.T) {
		t.Run("if closing fails", func(t *testing.T) {
			closeErr := errors.New("close failed")
			f := func() (err error) {
				defer Close(&err, closeFunc(func() error { return closeErr }))
				return nil
			}

			err := f()

			var cerr CloseError
			if !assert.ErrorAs(t, err, &cerr) {
				return
			}
			if !assert.ErrorIs(t, cerr, closeErr) {
				return
			}
			assert.Equal(t, "failed to close: close failed", cerr.Error())
		})

		t.Run("if closing fails after the function failed", func(t *testing.T) {
			closeErr := errors.New("close failed")
			funcErr := errors.New("func error")
			f := func() (err error) {
				defer Close(&err, closeFunc(func() error { return closeErr }))
				return funcErr
			}

			err := f()

			if !assert.ErrorIs(t, err, funcErr) {
				return
			}
			var cerr CloseError
			assert.ErrorAs(t, err, &cerr)
		})
	})

	t.Run("will do nothing", func(t *testing.T) {
		testCases := []struct {
			Name  string
			Value any
		}{
			{Name: "if the value is nil", Value: nil},
			{Name: "if the value is a nil io.Closer", Value: (interface{ Close() error })(nil)},
			{Name: "if the value is not an io.Closer", Value: strings.NewReader("a")},
			{Name: "if closing succeeds", Value: closeFunc(func() error { return nil })},
		}

		for _, testCase := range testCases {
			t.Run(testCase.Name, func(t *testing.T) {
				funcErr := errors.New("func error")
				f := func() (err error) {
					defer Close(&err, testCase.Value)
					return funcErr
				}

				assert.Equal(t, funcErr, f())
			})
		}
	})
}
