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

// Package buildorch invokes the operator-supplied build script with
// the fixed CLI contract described in spec.md 6, and reports whether
// it succeeded.
package buildorch

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Request describes one invocation of the build script.
type Request struct {
	BuildScript string // resolved absolute path to the build script
	SrcDir      string // absolute, must exist
	BuildDir    string // absolute, must exist
	InstallDir  string // absolute, must exist
	CC          string // resolved compiler command
	CXX         string
	Fort        string
	BuildFlags  string // single shell-like merged flag string
}

func (r Request) validate() error {
	for name, dir := range map[string]string{
		"src-dir":     r.SrcDir,
		"build-dir":   r.BuildDir,
		"install-dir": r.InstallDir,
	} {
		if !filepath.IsAbs(dir) {
			return fmt.Errorf("%s %q must be an absolute path", name, dir)
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return fmt.Errorf("%s %q does not exist", name, dir)
		}
	}
	return nil
}

// Build runs the build script with the fixed --src-dir/--build-dir/
// --install-dir/--cc/--cxx/--fort/--build-flags contract. Stdout and
// stderr are inherited by the subprocess. It returns true iff the
// build script exits with status zero.
func Build(r Request) (bool, error) {
	if err := r.validate(); err != nil {
		return false, err
	}

	cmd := exec.Command(r.BuildScript,
		"--src-dir", r.SrcDir,
		"--build-dir", r.BuildDir,
		"--install-dir", r.InstallDir,
		"--cc", r.CC,
		"--cxx", r.CXX,
		"--fort", r.Fort,
		"--build-flags", r.BuildFlags,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return true, nil
	}
	if _, ok := err.(*exec.ExitError); ok {
		return false, nil
	}
	return false, fmt.Errorf("running build script %s: %w", r.BuildScript, err)
}
