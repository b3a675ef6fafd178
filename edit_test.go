// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package cfgtree

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	testCases := []struct {
		Value    string
		Expected Mode
	}{
		{Value: "", Expected: ModeNone},
		{Value: "none", Expected: ModeNone},
		{Value: "all", Expected: ModeAll},
		{Value: "MISSING", Expected: ModeMissing},
	}

	for _, testCase := range testCases {
		t.Run("will parse "+testCase.Value, func(t *testing.T) {
			m, err := ParseMode(testCase.Value)
			if !assert.Nil(t, err) {
				return
			}
			assert.Equal(t, testCase.Expected, m)
		})
	}

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the mode is unknown", func(t *testing.T) {
			_, err := ParseMode("some")

			var merr InvalidModeError
			if !assert.ErrorAs(t, err, &merr) {
				return
			}
			assert.Equal(t, "some", merr.Value)
		})
	})
}

type recordingEditor struct {
	reqs []EditRequest
	edit func(EditRequest) (any, error)
}

func (e *recordingEditor) Edit(_ context.Context, req EditRequest) (any, error) {
	e.reqs = append(e.reqs, req)
	return e.edit(req)
}

var errUnedited = errors.New("unedited")

func TestNode_edit(t *testing.T) {
	t.Run("will offer missing values", func(t *testing.T) {
		t.Run("if the mode is missing", func(t *testing.T) {
			e := &recordingEditor{
				edit: func(EditRequest) (any, error) {
					return map[string]any{"y": 2}, nil
				},
			}

			n := New(map[string]any{"a": 1}, Interactive(ModeMissing, e))

			a, err := n.Key("a").Value()
			require.NoError(t, err)
			if !assert.Equal(t, 1, a) {
				return
			}
			if !assert.Empty(t, e.reqs) {
				return
			}

			v, err := n.Key("b").Configure(context.Background(), Mapping, Args{"x": 1})
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, map[string]any{"x": 1, "y": 2}, v) {
				return
			}
			if !assert.Len(t, e.reqs, 1) {
				return
			}

			req := e.reqs[0]
			if !assert.Equal(t, "'b'", req.Name) {
				return
			}
			if !assert.Equal(t, Missing, req.Value) {
				return
			}
			if !assert.Equal(t, map[string]any{}, req.Default) {
				return
			}
			assert.Equal(t, []string{"Default constructor: Mapping", "Default args: x=1"}, req.Notes)
		})
	})

	t.Run("will offer every value", func(t *testing.T) {
		t.Run("if the mode is all", func(t *testing.T) {
			e := &recordingEditor{
				edit: func(req EditRequest) (any, error) {
					if req.Name != "'a'" {
						return nil, errUnedited
					}
					return 5, nil
				},
			}

			n := New(map[string]any{"a": 1, "b": 2}, Interactive(ModeAll, e))

			a, err := n.Key("a").Value()
			require.NoError(t, err)
			if !assert.Equal(t, 5, a) {
				return
			}

			b, err := n.Key("b").Value()
			require.NoError(t, err)
			if !assert.Equal(t, 2, b) {
				return
			}
			if !assert.Len(t, e.reqs, 2) {
				return
			}
			assert.Equal(t, NoDefault, e.reqs[0].Default)
		})
	})

	t.Run("will suggest an empty sequence", func(t *testing.T) {
		t.Run("if a list is configured", func(t *testing.T) {
			e := &recordingEditor{
				edit: func(EditRequest) (any, error) {
					return []any{map[string]any{"a": 1}}, nil
				},
			}

			n := New(map[string]any{}, Interactive(ModeMissing, e))

			v, err := n.Key("items").ConfigureList(context.Background(), Mapping, nil)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, []any{map[string]any{"a": 1}}, v) {
				return
			}
			if !assert.Len(t, e.reqs, 1) {
				return
			}
			assert.Equal(t, []any{}, e.reqs[0].Default)
		})
	})

	t.Run("will forget children of the edited node", func(t *testing.T) {
		e := &recordingEditor{
			edit: func(req EditRequest) (any, error) {
				if req.Name != "'x'" {
					return nil, errUnedited
				}
				return map[string]any{"y": 2}, nil
			},
		}

		n := New(map[string]any{"x": map[string]any{"y": 1}}, Interactive(ModeAll, e))

		x := n.Key("x")
		before := x.Key("y")

		_, err := x.Value()
		require.NoError(t, err)

		after := x.Key("y")
		if !assert.NotSame(t, before, after) {
			return
		}

		v, err := after.Value()
		if !assert.Nil(t, err) {
			return
		}
		assert.Equal(t, 2, v)
	})

	t.Run("will leave the value unchanged", func(t *testing.T) {
		t.Run("if the editor fails", func(t *testing.T) {
			var buf bytes.Buffer
			h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
			e := EditorFunc(func(context.Context, EditRequest) (any, error) {
				return nil, errUnedited
			})

			n := New(map[string]any{"a": 1}, Interactive(ModeAll, e), LogHandler(h))

			v, err := n.Key("a").Value()
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, 1, v) {
				return
			}
			assert.Contains(t, buf.String(), "configuration left unedited")
		})
	})
}
