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

// Package pathresolve locates build and measure scripts (and
// compiler commands) using a fixed fallback order: the search path,
// then the directory containing the driver binary, then the current
// working directory.
package pathresolve

import (
	"fmt"
	"os"
	"path/filepath"
)

// executable reports whether path exists and has an executable bit
// set for someone.
func executable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0111 != 0
}

// onPath looks for name as an executable file in each directory of
// searchPath (as returned by splitting $PATH), returning the first
// hit.
func onPath(name string, searchPath []string) (string, bool) {
	for _, dir := range searchPath {
		candidate := filepath.Join(dir, name)
		if executable(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// Resolve finds an absolute path for name using, in order:
//  1. each directory in searchPath, first executable hit;
//  2. driverDir, the directory containing the driver binary;
//  3. cwd, the current working directory.
//
// If name is already an absolute path to an executable file, it is
// returned unchanged without consulting any fallback.
func Resolve(name string, searchPath []string, driverDir string, cwd string) (string, error) {
	if filepath.IsAbs(name) && executable(name) {
		return name, nil
	}

	if path, ok := onPath(name, searchPath); ok {
		return path, nil
	}

	if driverDir != "" {
		candidate := filepath.Join(driverDir, name)
		if executable(candidate) {
			return candidate, nil
		}
	}

	if cwd != "" {
		candidate := filepath.Join(cwd, name)
		if executable(candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("could not resolve %q on the search path, driver directory, or working directory", name)
}

// DriverDir returns the absolute directory containing the currently
// running executable, for use as Resolve's driverDir fallback.
func DriverDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("determining driver directory: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		resolved = exe
	}
	return filepath.Dir(resolved), nil
}
