// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package source

import (
	"context"
	"fmt"
	"math"

	"github.com/z5labs/cfgtree"

	lua "github.com/yuin/gopher-lua"
)

// Lua represents a Source whose config is a global table assigned by
// a Lua script, e.g.
//
//	config = {
//	  server = { class = "http.Server", addr = ":8080" },
//	}
//
// The script runs in a sandbox without the os, io and debug libraries
// or any way of loading other code.
type Lua struct {
	name   string
	src    string
	global string
}

var _ cfgtree.Source = Lua{}

// FromLua returns a source which runs src and reads the table assigned
// to the given global. The name is only used in diagnostics.
func FromLua(name, src, global string) Lua {
	return Lua{
		name:   name,
		src:    src,
		global: global,
	}
}

// InvalidLuaError occurs if the script fails to run or does not produce
// a config table which can be converted.
type InvalidLuaError struct {
	Name   string
	Reason string
}

// Error implements the error interface.
func (e InvalidLuaError) Error() string {
	return fmt.Sprintf("invalid lua config %s: %s", e.Name, e.Reason)
}

// Read implements the [cfgtree.Source] interface.
func (src Lua) Read(ctx context.Context) (any, error) {
	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	fn, err := L.LoadString(src.src)
	if err != nil {
		return nil, InvalidLuaError{Name: src.name, Reason: err.Error()}
	}
	L.Push(fn)
	err = L.PCall(0, lua.MultRet, nil)
	if err != nil {
		return nil, InvalidLuaError{Name: src.name, Reason: err.Error()}
	}

	tbl, ok := L.GetGlobal(src.global).(*lua.LTable)
	if !ok {
		return nil, InvalidLuaError{
			Name:   src.name,
			Reason: fmt.Sprintf("expected global '%s' to be a table", src.global),
		}
	}
	v, err := luaToNative(tbl, 0)
	if err != nil {
		return nil, InvalidLuaError{Name: src.name, Reason: err.Error()}
	}
	return v, nil
}

func newSandboxedVM() *lua.LState {
	L := lua.NewState()
	for _, name := range []string{"os", "io", "require", "dofile", "loadfile", "load", "loadstring", "debug"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

const maxLuaDepth = 64

func luaToNative(v lua.LValue, depth int) (any, error) {
	switch x := v.(type) {
	case *lua.LNilType:
		return nil, nil
	case lua.LBool:
		return bool(x), nil
	case lua.LString:
		return string(x), nil
	case lua.LNumber:
		f := float64(x)
		if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1<<53 {
			return int(f), nil
		}
		return f, nil
	case *lua.LTable:
		if depth >= maxLuaDepth {
			return nil, fmt.Errorf("table nesting exceeds %d levels", maxLuaDepth)
		}
		return luaTableToNative(x, depth+1)
	default:
		return nil, fmt.Errorf("unsupported lua value of type %s", v.Type())
	}
}

// luaTableToNative converts tables with only the keys 1..n into a
// sequence and everything else into a mapping.
func luaTableToNative(tbl *lua.LTable, depth int) (any, error) {
	n := tbl.MaxN()
	count := 0
	allStrings := true
	tbl.ForEach(func(k, _ lua.LValue) {
		count++
		if k.Type() != lua.LTString {
			allStrings = false
		}
	})

	if n > 0 && n == count {
		seq := make([]any, n)
		for i := 1; i <= n; i++ {
			v, err := luaToNative(tbl.RawGetInt(i), depth)
			if err != nil {
				return nil, err
			}
			seq[i-1] = v
		}
		return seq, nil
	}

	var err error
	if allStrings {
		m := make(map[string]any, count)
		tbl.ForEach(func(k, lv lua.LValue) {
			if err != nil {
				return
			}
			m[string(k.(lua.LString))], err = luaToNative(lv, depth)
		})
		return m, err
	}

	m := make(map[any]any, count)
	tbl.ForEach(func(k, lv lua.LValue) {
		if err != nil {
			return
		}
		if _, isTable := k.(*lua.LTable); isTable {
			err = fmt.Errorf("unsupported table key")
			return
		}
		var nk, nv any
		nk, err = luaToNative(k, depth)
		if err != nil {
			return
		}
		nv, err = luaToNative(lv, depth)
		m[nk] = nv
	})
	return m, err
}
