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

// Package catalog holds the static table of tunable compiler
// optimization flags and their minimum supported compiler version,
// and detects the version of a compiler on the search path.
package catalog

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Flag is a single tunable compiler optimization switch.
type Flag struct {
	// Name is the flag token without polarity, e.g. "dce" for
	// "-fdce" / "-fno-dce".
	Name string

	// MinVersion is the minimum compiler version, encoded as
	// major*10000 + minor*100 + patch, that supports this flag.
	MinVersion int
}

// Enabled returns the flag's enabled-polarity token, e.g. "-fdce".
func (f Flag) Enabled() string {
	return "-f" + f.Name
}

// Disabled returns the flag's disabled-polarity token, e.g. "-fno-dce".
func (f Flag) Disabled() string {
	return "-fno-" + f.Name
}

// Catalog is the immutable set of tunable flags known to this tool.
// Construct once with NewCatalog and pass explicitly; it carries no
// mutable state.
type Catalog struct {
	flags []Flag
}

// excluded reports whether the enabled form of name is in the fixed
// exclusion list (spec.md 4.1).
func excluded(name string) bool {
	enabled := "-f" + name
	for _, x := range excludedFlags {
		if x == enabled {
			return true
		}
	}
	return false
}

// NewCatalog builds the catalog from the static flag table, dropping
// the explicitly excluded flags.
func NewCatalog() *Catalog {
	c := &Catalog{}
	for name, minVersion := range minVersions {
		if excluded(name) {
			continue
		}
		c.flags = append(c.flags, Flag{Name: name, MinVersion: minVersion})
	}
	return c
}

// Candidates returns the flags whose MinVersion is at most the
// detected compiler version v.
func (c *Catalog) Candidates(v int) []Flag {
	var out []Flag
	for _, f := range c.flags {
		if f.MinVersion <= v {
			out = append(out, f)
		}
	}
	return out
}

// All returns every flag in the catalog, regardless of version.
func (c *Catalog) All() []Flag {
	return append([]Flag(nil), c.flags...)
}

// DetectVersion invokes cc with a version-dump argument and parses
// the three dot-separated integers it prints, combining them as
// major*10000 + minor*100 + patch.
func DetectVersion(cc string) (int, error) {
	out, err := exec.Command(cc, "-dumpversion").Output()
	if err != nil {
		return 0, fmt.Errorf("detecting compiler version of %s: %w", cc, err)
	}

	parts := strings.Split(strings.TrimSpace(string(out)), ".")
	if len(parts) != 3 {
		return 0, fmt.Errorf("unexpected -dumpversion output from %s: %q", cc, out)
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("parsing -dumpversion output from %s: %q: %w", cc, out, err)
		}
		nums[i] = n
	}

	return nums[0]*10000 + nums[1]*100 + nums[2], nil
}
