// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package tracing

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	t.Run("will export ended spans", func(t *testing.T) {
		var buf bytes.Buffer
		tp, err := NewProvider(context.Background(), Config{
			ServiceName: "cfgtree",
			Out:         &buf,
		})
		require.NoError(t, err)

		_, span := tp.Tracer("tracing").Start(context.Background(), "cfgtree.Configure")
		span.End()

		err = tp.Shutdown(context.Background())
		if !assert.Nil(t, err) {
			return
		}

		var exported struct {
			Name     string
			Resource []struct {
				Key   string
				Value struct {
					Value any
				}
			}
		}
		err = json.NewDecoder(&buf).Decode(&exported)
		if !assert.Nil(t, err) {
			return
		}
		if !assert.Equal(t, "cfgtree.Configure", exported.Name) {
			return
		}

		var serviceName any
		for _, kv := range exported.Resource {
			if kv.Key == "service.name" {
				serviceName = kv.Value.Value
			}
		}
		assert.Equal(t, "cfgtree", serviceName)
	})
}
