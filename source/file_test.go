// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package source

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
)

type fsFunc func(string) (fs.File, error)

func (f fsFunc) Open(path string) (fs.File, error) {
	return f(path)
}

func TestFileReader_Read(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the fs.FS fails to open the file", func(t *testing.T) {
			openErr := errors.New("failed to open")
			fs := fsFunc(func(s string) (fs.File, error) {
				return nil, openErr
			})

			r := NewFileReader(fs, "config.yaml")
			_, err := io.ReadAll(r)
			if !assert.ErrorIs(t, err, openErr) {
				return
			}

			_, err = r.Read(make([]byte, 1))
			if !assert.ErrorIs(t, err, openErr) {
				return
			}
		})
	})
}

func TestFileReader_Close(t *testing.T) {
	t.Run("will not return an error", func(t *testing.T) {
		t.Run("if Close is called before the underlying file has been opened", func(t *testing.T) {
			fs := fsFunc(func(s string) (fs.File, error) {
				return nil, nil
			})

			r := NewFileReader(fs, "config.yaml")
			err := r.Close()
			if !assert.Nil(t, err) {
				return
			}
		})
	})
}

func TestFormat(t *testing.T) {
	testCases := []struct {
		Path   string
		Format string
	}{
		{Path: "a.yaml", Format: "yaml"},
		{Path: "a.YML", Format: "yaml"},
		{Path: "dir/a.json", Format: "json"},
		{Path: "a.hcl", Format: "hcl"},
		{Path: "a.lua", Format: "lua"},
		{Path: "a.toml", Format: "toml"},
		{Path: "a.ini", Format: "ini"},
		{Path: "a.properties", Format: "properties"},
		{Path: ".env", Format: "dotenv"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Path, func(t *testing.T) {
			format, err := Format(testCase.Path)
			if !assert.Nil(t, err) {
				return
			}
			assert.Equal(t, testCase.Format, format)
		})
	}

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the extension is unknown", func(t *testing.T) {
			_, err := Format("config.xml")

			var ferr UnsupportedFormatError
			if !assert.ErrorAs(t, err, &ferr) {
				return
			}
			if !assert.Equal(t, ".xml", ferr.Ext) {
				return
			}
			assert.NotEmpty(t, ferr.Error())
		})
	})
}

func TestFile_Read(t *testing.T) {
	fsys := fstest.MapFS{
		"config.yaml":   {Data: []byte("server:\n  port: 8080\n")},
		"config.json":   {Data: []byte(`{"server": {"port": 8080}}`)},
		"config.hcl":    {Data: []byte("server {\n  port = 8080\n}\n")},
		"config.lua":    {Data: []byte("config = { server = { port = 8080 } }")},
		"config.toml":   {Data: []byte("[server]\nport = 8080\n")},
		"template.yaml": {Data: []byte("server:\n  port: {{ .Port }}\n")},
		"config.xml":    {Data: []byte("<server/>")},
	}

	expected := map[string]any{
		"server": map[string]any{
			"port": 8080,
		},
	}

	t.Run("will read the same value", func(t *testing.T) {
		for _, path := range []string{"config.yaml", "config.json", "config.hcl", "config.lua", "config.toml"} {
			t.Run("if the format is "+path, func(t *testing.T) {
				v, err := FromFile(fsys, path).Read(context.Background())
				if !assert.Nil(t, err) {
					return
				}
				assert.Equal(t, expected, v)
			})
		}

		t.Run("if the file is a template", func(t *testing.T) {
			src := FromFile(fsys, "template.yaml", RenderTemplate(TemplateData(map[string]any{"Port": 8080})))

			v, err := src.Read(context.Background())
			if !assert.Nil(t, err) {
				return
			}
			assert.Equal(t, expected, v)
		})
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the format is not supported", func(t *testing.T) {
			_, err := FromFile(fsys, "config.xml").Read(context.Background())

			var ferr UnsupportedFormatError
			assert.ErrorAs(t, err, &ferr)
		})

		t.Run("if the file does not exist", func(t *testing.T) {
			_, err := FromFile(fsys, "missing.yaml").Read(context.Background())
			assert.ErrorIs(t, err, fs.ErrNotExist)
		})
	})
}
