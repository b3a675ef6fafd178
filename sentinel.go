// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package cfgtree

// Sentinel is a distinguished marker value which can never be
// confused with a value decoded from a configuration source.
type Sentinel struct {
	name string
}

// String implements the [fmt.Stringer] interface.
func (s *Sentinel) String() string {
	return s.name
}

var (
	// Missing is the value wrapped by a [Node] whose position does not
	// exist in the configuration. A nil value is a present null.
	Missing = &Sentinel{name: "MISSING"}

	// NoDefault may be passed to [Node.Lookup] to indicate that an
	// absent value is an error.
	NoDefault = &Sentinel{name: "NO_DEFAULT"}

	// Required may be used as the value of a default argument to
	// indicate that the configuration must supply it.
	Required = &Sentinel{name: "REQUIRED"}
)

func isMissing(v any) bool {
	s, ok := v.(*Sentinel)
	return ok && s == Missing
}
