// Copyright 2022 Google Inc. All rights reserved.
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

// Package elfsize is a concrete implementation of the measure-script
// contract (spec.md 6) for the code-size objective: it parses an ELF
// executable's DWARF compilation units and symbol table, joins them
// against a compilation manifest, and reports per-compilation sizes.
//
// It is read-only: the executable is opened and never modified.
package elfsize

import (
	"debug/dwarf"
	"debug/elf"
	"errors"
	"fmt"
	"path/filepath"

	"android/soong/mageec/logger"
	"android/soong/mageec/manifest"
)

// Row is one measurement row, emitted per compilation id (spec.md 3).
type Row struct {
	SourcePath    string
	Kind          string // "module" or "function"
	Name          string
	CompilationID string
	MetricName    string
	MetricValue   float64
}

// ErrNotELF is returned when the file at execPath is not an ELF
// executable.
var ErrNotELF = errors.New("not an ELF executable")

// ErrNoDWARF is returned when the ELF executable has no DWARF debug
// information.
var ErrNoDWARF = errors.New("executable has no DWARF information")

// Measure parses execPath and returns the per-compilation size rows
// and their scalar total. man is the already-parsed compilation
// manifest for the trial that produced execPath.
func Measure(execPath string, man manifest.Manifest, log *logger.Logger) (float64, []Row, error) {
	f, err := elf.Open(execPath)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %s: %v", ErrNotELF, execPath, err)
	}
	defer f.Close()

	dwarfData, err := f.DWARF()
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %s: %v", ErrNoDWARF, execPath, err)
	}

	srcPaths, err := compilationUnitSources(dwarfData)
	if err != nil {
		return 0, nil, fmt.Errorf("reading DWARF compilation units from %s: %w", execPath, err)
	}

	symSizes, err := symbolSizes(f)
	if err != nil {
		return 0, nil, fmt.Errorf("reading ELF symbols from %s: %w", execPath, err)
	}

	var rows []Row
	var total float64

	for _, src := range srcPaths {
		entry, ok := man[src]
		if !ok {
			if log != nil {
				log.Verbosef("%s: source %s is in the DWARF unit set but not in the manifest, ignoring", execPath, src)
			}
			continue
		}

		var moduleSize float64
		for _, fn := range entry.Functions {
			size, ok := symSizes[fn.Name]
			if !ok {
				if log != nil {
					log.Verbosef("%s: function %s listed in manifest but absent from symbol table (likely inlined), ignoring", execPath, fn.Name)
				}
				continue
			}
			if size == 0 {
				if log != nil {
					log.Verbosef("%s: function %s has size 0, ignoring", execPath, fn.Name)
				}
				continue
			}

			fsize := float64(size)
			moduleSize += fsize
			total += fsize
			rows = append(rows, Row{
				SourcePath:    src,
				Kind:          "function",
				Name:          fn.Name,
				CompilationID: fn.ID,
				MetricName:    "size",
				MetricValue:   fsize,
			})
		}

		if entry.Module != nil {
			if moduleSize == 0 {
				if log != nil {
					log.Verbosef("%s: module %s has size 0, ignoring", execPath, entry.Module.Name)
				}
			} else {
				rows = append(rows, Row{
					SourcePath:    src,
					Kind:          "module",
					Name:          entry.Module.Name,
					CompilationID: entry.Module.ID,
					MetricName:    "size",
					MetricValue:   moduleSize,
				})
			}
		}
	}

	return total, rows, nil
}

// compilationUnitSources enumerates the top-level DIEs of every
// compilation unit and resolves each to an absolute, symlink-
// canonicalized source path.
func compilationUnitSources(d *dwarf.Data) ([]string, error) {
	var out []string
	r := d.Reader()
	for {
		entry, err := r.Next()
		if err != nil {
			return nil, err
		}
		if entry == nil {
			break
		}
		if entry.Tag != dwarf.TagCompileUnit {
			r.SkipChildren()
			continue
		}

		name, _ := entry.Val(dwarf.AttrName).(string)
		compDir, _ := entry.Val(dwarf.AttrCompDir).(string)

		if name == "" {
			r.SkipChildren()
			continue
		}

		out = append(out, resolveSourcePath(name, compDir))
		r.SkipChildren()
	}
	return out, nil
}

// resolveSourcePath turns a DWARF DW_AT_name (possibly relative) and
// its unit's DW_AT_comp_dir into an absolute, symlink-canonicalized
// source path, per spec.md 4.5 step 3.
func resolveSourcePath(name, compDir string) string {
	src := name
	if !filepath.IsAbs(src) {
		src = filepath.Join(compDir, name)
	}
	if resolved, err := filepath.EvalSymlinks(src); err == nil {
		src = resolved
	}
	return src
}

// symbolSizes builds a name -> size map from every symbol table
// section in f (both the regular and dynamic symbol tables).
func symbolSizes(f *elf.File) (map[string]uint64, error) {
	sizes := map[string]uint64{}

	addAll := func(syms []elf.Symbol, err error) error {
		if err != nil && err != elf.ErrNoSymbols {
			return err
		}
		for _, s := range syms {
			sizes[s.Name] = s.Size
		}
		return nil
	}

	if err := addAll(f.Symbols()); err != nil {
		return nil, err
	}
	if err := addAll(f.DynamicSymbols()); err != nil {
		return nil, err
	}
	return sizes, nil
}
