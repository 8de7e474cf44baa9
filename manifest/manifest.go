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

// Package manifest reads the per-trial compilation-identifier CSV
// produced by the wrapper compilers, relating source paths to
// module- and function-level compilation identifiers.
package manifest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"android/soong/mageec/logger"
)

// Function is one function-level compilation id entry.
type Function struct {
	Name string
	ID   string
}

// Module is the module-level compilation id entry for a source file,
// if one was recorded.
type Module struct {
	Name string
	ID   string
}

// SourceEntry is everything the manifest recorded for a single
// source path: an optional module entry and the function entries.
type SourceEntry struct {
	Module    *Module
	Functions []Function
}

// Manifest maps absolute source paths to their recorded compilation
// ids.
type Manifest map[string]*SourceEntry

// Read parses the CSV at path. Lines with an arity other than five,
// or whose fourth field isn't "compilation", are skipped. Duplicate
// module entries per source path, and duplicate function entries per
// (source, function), are logged and dropped (first occurrence
// wins). Source paths that don't exist on disk are dropped.
func Read(path string, log *logger.Logger) (Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening compilation manifest %s: %w", path, err)
	}
	defer f.Close()

	m := Manifest{}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // arity varies; we validate per-row below

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A malformed CSV row (e.g. unescaped quote) is treated the
			// same as a wrong-arity row: skipped, not fatal.
			if log != nil {
				log.Verbosef("skipping malformed manifest row in %s: %v", path, err)
			}
			continue
		}

		if len(row) != 5 {
			continue
		}
		srcPath, entryKind, name, rowKind, compilationID := row[0], row[1], row[2], row[3], row[4]
		if rowKind != "compilation" {
			continue
		}

		if _, err := os.Stat(srcPath); err != nil {
			if log != nil {
				log.Verbosef("manifest references non-existent source %s, skipping", srcPath)
			}
			continue
		}

		entry := m[srcPath]
		if entry == nil {
			entry = &SourceEntry{}
			m[srcPath] = entry
		}

		switch entryKind {
		case "module":
			if entry.Module != nil {
				if log != nil {
					log.Verbosef("duplicate module compilation id for %s, ignoring", srcPath)
				}
				continue
			}
			entry.Module = &Module{Name: name, ID: compilationID}
		case "function":
			dup := false
			for _, fn := range entry.Functions {
				if fn.Name == name {
					dup = true
					break
				}
			}
			if dup {
				if log != nil {
					log.Verbosef("duplicate function compilation id for %s in %s, ignoring", name, srcPath)
				}
				continue
			}
			entry.Functions = append(entry.Functions, Function{Name: name, ID: compilationID})
		default:
			if log != nil {
				log.Verbosef("unknown manifest entry kind %q for %s, skipping", entryKind, srcPath)
			}
		}
	}

	return m, nil
}
