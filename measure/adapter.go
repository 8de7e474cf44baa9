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

// Package measure invokes an external measure script, conforming to
// the contract in spec.md 6, once per executable discovered under a
// trial's install tree, and sums the scalar each reports.
package measure

import (
	"bufio"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"android/soong/mageec/logger"
)

// FindExecutables walks installDir and returns every regular file
// with any executable bit set, skipping any whose path relative to
// installDir matches one of excludeGlobs (doublestar patterns, e.g.
// "**/*.so" to skip shared objects that happen to carry the
// executable bit but aren't benchmark entry points).
func FindExecutables(installDir string, excludeGlobs []string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(installDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Mode()&0111 == 0 {
			return nil
		}

		rel, err := filepath.Rel(installDir, path)
		if err != nil {
			return err
		}
		for _, glob := range excludeGlobs {
			if matched, _ := doublestar.Match(glob, filepath.ToSlash(rel)); matched {
				return nil
			}
		}

		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking install tree %s: %w", installDir, err)
	}
	return out, nil
}

// Request bundles the fixed arguments shared by every executable in
// one trial's measurement pass.
type Request struct {
	MeasureScript  string // resolved absolute path
	CompilationIDs string // path to the trial's compilation manifest
	ResultsPath    string // results CSV to append to
	ExecFlags      string // optional, empty means omit --exec-flags
	ExcludeGlobs   []string
}

// Sum invokes the measure script once per executable under
// installDir and returns the sum of their reported scalars. Any
// single non-zero exit aborts the whole measurement with the
// spec.md failure sentinel (0, false, nil) — the error return is reserved
// for problems invoking the adapter itself (e.g. the install tree
// can't be walked), not for a measure script reporting failure.
func Sum(installDir string, req Request, log *logger.Logger) (float64, bool, error) {
	execs, err := FindExecutables(installDir, req.ExcludeGlobs)
	if err != nil {
		return 0, false, err
	}

	var total float64
	for _, exe := range execs {
		value, ok, err := measureOne(exe, req, log)
		if err != nil {
			return 0, false, err
		}
		if !ok {
			return 0, false, nil
		}
		total += value
	}
	return total, true, nil
}

func measureOne(execPath string, req Request, log *logger.Logger) (float64, bool, error) {
	args := []string{
		"--exec-path", execPath,
		"--compilation-ids", req.CompilationIDs,
		"--out", req.ResultsPath,
	}
	if req.ExecFlags != "" {
		args = append(args, "--exec-flags", req.ExecFlags)
	}

	cmd := exec.Command(req.MeasureScript, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, false, fmt.Errorf("piping measure script stdout: %w", err)
	}
	cmd.Stderr = nil // measure script stderr is diagnostic only, not captured

	if err := cmd.Start(); err != nil {
		return 0, false, fmt.Errorf("starting measure script %s: %w", req.MeasureScript, err)
	}

	scanner := bufio.NewScanner(stdout)
	var line string
	if scanner.Scan() {
		line = strings.TrimSpace(scanner.Text())
	}

	waitErr := cmd.Wait()
	if waitErr != nil {
		if log != nil {
			log.Verbosef("measure script failed for %s: %v", execPath, waitErr)
		}
		return 0, false, nil
	}

	value, err := strconv.ParseFloat(line, 64)
	if err != nil {
		if log != nil {
			log.Verbosef("measure script produced non-numeric output for %s: %q", execPath, line)
		}
		return 0, false, nil
	}
	return value, true, nil
}
