// Copyright 2017 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package flagvec implements the ordered flag vector that the CE
// search mutates: a sequence of "-f<name>" / "-fno-<name>" tokens
// with exactly one polarity per flag name.
package flagvec

import "strings"

// Vector is an ordered sequence of flag tokens with unique names.
type Vector struct {
	order []string          // flag names, in insertion order
	token map[string]string // name -> current token ("-fname" or "-fno-name")
}

// New builds a vector with every name enabled, in the given order.
func New(names []string) *Vector {
	v := &Vector{token: make(map[string]string, len(names))}
	for _, n := range names {
		v.order = append(v.order, n)
		v.token[n] = "-f" + n
	}
	return v
}

// Clone returns an independent copy of v.
func (v *Vector) Clone() *Vector {
	cp := &Vector{
		order: append([]string(nil), v.order...),
		token: make(map[string]string, len(v.token)),
	}
	for k, t := range v.token {
		cp.token[k] = t
	}
	return cp
}

// Disable flips name to its "-fno-<name>" form. It is a no-op if name
// is not present.
func (v *Vector) Disable(name string) {
	if _, ok := v.token[name]; ok {
		v.token[name] = "-fno-" + name
	}
}

// Enable flips name back to its "-f<name>" form.
func (v *Vector) Enable(name string) {
	if _, ok := v.token[name]; ok {
		v.token[name] = "-f" + name
	}
}

// IsEnabled reports whether name currently has enabled polarity.
func (v *Vector) IsEnabled(name string) bool {
	return v.token[name] == "-f"+name
}

// Tokens returns the flag tokens in insertion order.
func (v *Vector) Tokens() []string {
	out := make([]string, len(v.order))
	for i, n := range v.order {
		out[i] = v.token[n]
	}
	return out
}

// String renders the vector as a single space-separated flag string,
// suitable for appending to a build-flags argument.
func (v *Vector) String() string {
	return strings.Join(v.Tokens(), " ")
}

// FlipPolarity toggles a single "-f<name>" or "-fno-<name>" token to
// its opposite. It is used for the round-trip invariant in spec.md 8:
// flipping twice must yield the original token.
func FlipPolarity(token string) string {
	if strings.HasPrefix(token, "-fno-") {
		return "-f" + strings.TrimPrefix(token, "-fno-")
	}
	return "-fno-" + strings.TrimPrefix(token, "-f")
}
