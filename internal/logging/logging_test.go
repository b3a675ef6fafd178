// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type record struct {
	Message string         `json:"msg"`
	Secret  string         `json:"secret"`
	Args    map[string]any `json:"args"`
	OTel    struct {
		TraceID string `json:"trace_id"`
		SpanID  string `json:"span_id"`
	} `json:"otel"`
}

func newLogger(t *testing.T, buf *bytes.Buffer, opts ...Option) *slog.Logger {
	t.Helper()

	h, err := NewHandler(buf, append([]Option{Format("json"), Level(slog.LevelDebug)}, opts...)...)
	require.NoError(t, err)
	return slog.New(h)
}

func TestHandler_Handle(t *testing.T) {
	t.Run("will not mask attrs", func(t *testing.T) {
		t.Run("if no keys are masked", func(t *testing.T) {
			var buf bytes.Buffer
			log := newLogger(t, &buf)

			log.Info("hello world", slog.String("secret", "super duper secret value"))

			var r record
			err := json.Unmarshal(buf.Bytes(), &r)
			if !assert.Nil(t, err) {
				return
			}
			assert.Equal(t, "super duper secret value", r.Secret)
		})
	})

	t.Run("will mask attrs", func(t *testing.T) {
		t.Run("if the key is masked", func(t *testing.T) {
			var buf bytes.Buffer
			log := newLogger(t, &buf, Mask("secret"))

			log.Info("hello world", slog.String("secret", "super duper secret value"))

			var r record
			err := json.Unmarshal(buf.Bytes(), &r)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, "hello world", r.Message) {
				return
			}
			assert.Equal(t, Masked, r.Secret)
		})

		t.Run("if the key is nested in a group", func(t *testing.T) {
			var buf bytes.Buffer
			log := newLogger(t, &buf, Mask("password"))

			log.Debug("calling constructor", slog.Group("args", slog.String("user", "admin"), slog.String("password", "hunter2")))

			var r record
			err := json.Unmarshal(buf.Bytes(), &r)
			if !assert.Nil(t, err) {
				return
			}
			assert.Equal(t, map[string]any{"user": "admin", "password": Masked}, r.Args)
		})

		t.Run("if the attr was added to the handler", func(t *testing.T) {
			var buf bytes.Buffer
			log := newLogger(t, &buf, Mask("secret")).With(slog.String("secret", "value"))

			log.Info("hello world")

			var r record
			err := json.Unmarshal(buf.Bytes(), &r)
			if !assert.Nil(t, err) {
				return
			}
			assert.Equal(t, Masked, r.Secret)
		})
	})

	t.Run("will add trace id and span id", func(t *testing.T) {
		t.Run("if the span context is valid", func(t *testing.T) {
			var buf bytes.Buffer
			log := newLogger(t, &buf)

			tp := sdktrace.NewTracerProvider()
			ctx, span := tp.Tracer("logging").Start(context.Background(), "test")
			defer span.End()

			log.InfoContext(ctx, "test")

			var r record
			err := json.Unmarshal(buf.Bytes(), &r)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, span.SpanContext().TraceID().String(), r.OTel.TraceID) {
				return
			}
			assert.Equal(t, span.SpanContext().SpanID().String(), r.OTel.SpanID)
		})
	})

	t.Run("will not add trace id and span id", func(t *testing.T) {
		t.Run("if the span context is invalid", func(t *testing.T) {
			var buf bytes.Buffer
			log := newLogger(t, &buf)

			log.InfoContext(context.Background(), "test")

			var r record
			err := json.Unmarshal(buf.Bytes(), &r)
			if !assert.Nil(t, err) {
				return
			}
			assert.Empty(t, r.OTel.TraceID)
		})
	})
}

func TestNewHandler(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the format is unknown", func(t *testing.T) {
			_, err := NewHandler(&bytes.Buffer{}, Format("xml"))

			var ferr UnknownFormatError
			if !assert.ErrorAs(t, err, &ferr) {
				return
			}
			assert.Equal(t, "xml", ferr.Format)
		})
	})

	t.Run("will drop records below the level", func(t *testing.T) {
		var buf bytes.Buffer
		h, err := NewHandler(&buf, Level(slog.LevelWarn))
		require.NoError(t, err)

		slog.New(h).Info("hello")

		assert.Empty(t, buf.String())
	})
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		Value    string
		Expected slog.Level
	}{
		{Value: "debug", Expected: slog.LevelDebug},
		{Value: "INFO", Expected: slog.LevelInfo},
		{Value: "warn", Expected: slog.LevelWarn},
		{Value: "error", Expected: slog.LevelError},
	}

	for _, testCase := range testCases {
		t.Run("will parse "+testCase.Value, func(t *testing.T) {
			l, err := ParseLevel(testCase.Value)
			if !assert.Nil(t, err) {
				return
			}
			assert.Equal(t, testCase.Expected, l)
		})
	}

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the level is unknown", func(t *testing.T) {
			_, err := ParseLevel("loud")

			assert.Error(t, err)
		})
	})
}
