// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package source

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestViper_Read(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the config can not be parsed", func(t *testing.T) {
			r := strings.NewReader(`a = [`)

			_, err := FromViperReader(r, "toml").Read(context.Background())

			var ierr InvalidViperConfigError
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

	t.Run("will return all settings", func(t *testing.T) {
		t.Run("if the config is TOML", func(t *testing.T) {
			r := strings.NewReader(`
name = "svc"

[server]
port = 8080
`)

			v, err := FromViperReader(r, "toml").Read(context.Background())
			if !assert.Nil(t, err) {
				return
			}

			expected := map[string]any{
				"name": "svc",
				"server": map[string]any{
					"port": 8080,
				},
			}
			assert.Equal(t, expected, v)
		})

		t.Run("if the viper instance was populated directly", func(t *testing.T) {
			vp := viper.New()
			vp.Set("Server.Addr", ":8080")

			v, err := FromViper(vp).Read(context.Background())
			if !assert.Nil(t, err) {
				return
			}

			expected := map[string]any{
				"server": map[string]any{
					"addr": ":8080",
				},
			}
			assert.Equal(t, expected, v)
		})
	})
}
