// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package source

import (
	"context"
	"io"

	"github.com/z5labs/cfgtree"
	"github.com/z5labs/cfgtree/internal/try"

	"github.com/spf13/viper"
)

// Viper represents a Source backed by a [viper.Viper] instance. This
// gives access to every format viper supports, e.g. TOML, dotenv,
// INI and Java properties.
//
// Viper treats keys case insensitively, so all mapping keys
// are lower case.
type Viper struct {
	v *viper.Viper
	r io.Reader
}

var _ cfgtree.Source = Viper{}

// FromViper returns a source which reads all settings of v.
func FromViper(v *viper.Viper) Viper {
	return Viper{v: v}
}

// FromViperReader returns a source which parses r, in the format named
// by configType, e.g. "toml", using a new [viper.Viper] instance.
func FromViperReader(r io.Reader, configType string) Viper {
	v := viper.New()
	v.SetConfigType(configType)
	return Viper{v: v, r: r}
}

// InvalidViperConfigError occurs if viper fails to parse the configuration.
type InvalidViperConfigError struct {
	Cause error
}

// Error implements the error interface.
func (e InvalidViperConfigError) Error() string {
	return "invalid config: " + e.Cause.Error()
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e InvalidViperConfigError) Unwrap() error {
	return e.Cause
}

// Read implements the [cfgtree.Source] interface.
func (src Viper) Read(ctx context.Context) (_ any, err error) {
	if src.r != nil {
		defer try.Close(&err, src.r)

		err = src.v.ReadConfig(src.r)
		if err != nil {
			return nil, InvalidViperConfigError{Cause: err}
		}
	}
	return normalizeNested(src.v.AllSettings()), nil
}

// normalizeNested converts the various map and number types produced
// by third-party decoders into the shapes documented by this package.
func normalizeNested(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, vv := range x {
			x[k] = normalizeNested(vv)
		}
		return x
	case map[any]any:
		for k, vv := range x {
			x[k] = normalizeNested(vv)
		}
		return x
	case []any:
		for i, vv := range x {
			x[i] = normalizeNested(vv)
		}
		return x
	case []map[string]any:
		out := make([]any, len(x))
		for i, vv := range x {
			out[i] = normalizeNested(vv)
		}
		return out
	case int64:
		return int(x)
	case int32:
		return int(x)
	default:
		return v
	}
}
