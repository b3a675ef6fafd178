// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package source

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/z5labs/cfgtree"
	"github.com/z5labs/cfgtree/internal/try"
)

// FileReader is an io.Reader that handles opening a file for reading automatically.
type FileReader struct {
	path string

	openOnce sync.Once
	openErr  error
	fs       fs.FS
	file     io.ReadCloser
}

// NewFileReader configures a FileReader.
func NewFileReader(fs fs.FS, path string) *FileReader {
	return &FileReader{
		path: path,
		fs:   fs,
	}
}

// Read implements the io.Reader interface.
func (r *FileReader) Read(b []byte) (int, error) {
	r.openOnce.Do(func() {
		r.file, r.openErr = r.fs.Open(r.path)
	})
	if r.openErr != nil {
		return 0, r.openErr
	}
	if r.file == nil {
		return 0, io.EOF
	}
	return r.file.Read(b)
}

// Close implements the io.Closer interface.
func (r *FileReader) Close() error {
	if r.file == nil {
		return nil
	}

	err := r.file.Close()
	r.file = nil
	return err
}

// LuaGlobal is the global table read from Lua files by [File].
const LuaGlobal = "config"

// File represents a Source which picks its format from the file extension:
//
//	.yaml, .yml                  YAML
//	.json                        JSON
//	.hcl                         HCL
//	.lua                         Lua, reading the global table named config
//	.toml, .env, .ini, .properties  through viper
type File struct {
	fsys fs.FS
	path string

	tmplOpts []RenderTextTemplateOption
	render   bool
}

var _ cfgtree.Source = File{}

// FileOption configures a [File] source.
type FileOption func(*File)

// RenderTemplate renders the file as a text/template before parsing it.
func RenderTemplate(opts ...RenderTextTemplateOption) FileOption {
	return func(f *File) {
		f.render = true
		f.tmplOpts = append(f.tmplOpts, opts...)
	}
}

// FromFile returns a source which reads the file at path from fsys.
func FromFile(fsys fs.FS, path string, opts ...FileOption) File {
	f := File{
		fsys: fsys,
		path: path,
	}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// UnsupportedFormatError occurs when a file extension is not
// associated with any format.
type UnsupportedFormatError struct {
	Path string
	Ext  string
}

// Error implements the error interface.
func (e UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported config format %q for file: %s", e.Ext, e.Path)
}

// Format returns the name of the format used for the file at p, or an
// [UnsupportedFormatError] if there is none.
func Format(p string) (string, error) {
	ext := strings.ToLower(path.Ext(p))
	switch ext {
	case ".yaml", ".yml":
		return "yaml", nil
	case ".json":
		return "json", nil
	case ".hcl":
		return "hcl", nil
	case ".lua":
		return "lua", nil
	case ".toml", ".ini", ".properties":
		return ext[1:], nil
	case ".env":
		return "dotenv", nil
	default:
		return "", UnsupportedFormatError{Path: p, Ext: ext}
	}
}

// Read implements the [cfgtree.Source] interface.
func (src File) Read(ctx context.Context) (_ any, err error) {
	format, err := Format(src.path)
	if err != nil {
		return nil, err
	}

	var r io.Reader = NewFileReader(src.fsys, src.path)
	if src.render {
		r = RenderTextTemplate(r, src.tmplOpts...)
	}

	switch format {
	case "yaml":
		return FromYaml(r).Read(ctx)
	case "json":
		return FromJson(r).Read(ctx)
	}

	defer try.Close(&err, r)

	switch format {
	case "hcl":
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return FromHcl(src.path, b).Read(ctx)
	case "lua":
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return FromLua(src.path, string(b), LuaGlobal).Read(ctx)
	default:
		return FromViperReader(r, format).Read(ctx)
	}
}
