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

// Package config resolves command-line flags into an immutable
// RunConfig passed explicitly into every component, mirroring the
// teacher's android.Config value-object pattern rather than relying
// on ambient globals.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"android/soong/mageec/catalog"
	"android/soong/mageec/pathresolve"
)

// PresetO3 and PresetOs are the two tokens spec.md 6 permits for the
// base optimization preset.
const (
	PresetO3 = "-O3"
	PresetOs = "-Os"
)

// RunConfig is the fully-resolved, immutable argument set for one
// invocation of the ce subcommand.
type RunConfig struct {
	SrcDir  string
	RunDir  string
	CC, CXX string
	Fort    string

	DatabasePath string
	FeaturesPath string

	BuildScript   string
	MeasureScript string
	PluginPath    string

	Preset     string
	Jobs       int
	Debug      bool
	ExecFlags  string
	BuildFlags string

	// MeasureExcludeGlobs skips install-tree entries matching any of
	// these doublestar patterns when discovering executables to
	// measure (e.g. "**/*.so" to skip shared objects).
	MeasureExcludeGlobs []string

	SearchPath []string
}

// CompilerVersion runs C1 against the resolved CC.
func (c *RunConfig) CompilerVersion() (int, error) {
	return catalog.DetectVersion(c.CC)
}

// ResultsPath is the path of the shared, append-only results CSV for
// this run.
func (c *RunConfig) ResultsPath() string {
	return filepath.Join(c.RunDir, "results.csv")
}

// TrialDir returns the per-trial working directory for trial id.
func (c *RunConfig) TrialDir(id int) string {
	return filepath.Join(c.RunDir, fmt.Sprintf("test.%d", id))
}

// Validate checks the preconditions of the ce flow; the extract flow
// validates its own request in package extract (spec.md 6: "All top-level entry points return 0 on success,
// non-zero on any precondition failure"), and resolves CC, CXX, Fort,
// BuildScript and MeasureScript in place to the absolute paths found
// by the Path/Script Resolver fallback chain (search path, driver
// directory, working directory), so every later component runs
// against the resolved path rather than the raw operator-supplied
// command.
func (c *RunConfig) Validate() error {
	if c.Preset != PresetO3 && c.Preset != PresetOs {
		return fmt.Errorf("preset must be %q or %q, got %q", PresetO3, PresetOs, c.Preset)
	}
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be >= 1, got %d", c.Jobs)
	}
	if !filepath.IsAbs(c.SrcDir) {
		return fmt.Errorf("src-dir %q must be absolute", c.SrcDir)
	}
	if info, err := os.Stat(c.SrcDir); err != nil || !info.IsDir() {
		return fmt.Errorf("src-dir %q does not exist", c.SrcDir)
	}
	if !filepath.IsAbs(c.RunDir) {
		return fmt.Errorf("run-dir %q must be absolute", c.RunDir)
	}
	if info, err := os.Stat(c.RunDir); err != nil || !info.IsDir() {
		return fmt.Errorf("run-dir %q does not exist", c.RunDir)
	}
	if _, err := os.Stat(c.DatabasePath); err != nil {
		return fmt.Errorf("database %q does not exist", c.DatabasePath)
	}
	if _, err := os.Stat(c.FeaturesPath); err != nil {
		return fmt.Errorf("features file %q does not exist", c.FeaturesPath)
	}

	driverDir, err := pathresolve.DriverDir()
	if err != nil {
		return err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determining working directory: %w", err)
	}

	for name, cmd := range map[string]*string{"cc": &c.CC, "cxx": &c.CXX, "fort": &c.Fort} {
		if *cmd == "" {
			return fmt.Errorf("%s must be set", name)
		}
		resolved, err := pathresolve.Resolve(*cmd, c.SearchPath, driverDir, cwd)
		if err != nil {
			return fmt.Errorf("%s %q does not resolve on the search path, driver directory, or working directory: %w", name, *cmd, err)
		}
		*cmd = resolved
	}
	for name, script := range map[string]*string{"build-script": &c.BuildScript, "measure-script": &c.MeasureScript} {
		if *script == "" {
			return fmt.Errorf("%s must be set", name)
		}
		resolved, err := pathresolve.Resolve(*script, c.SearchPath, driverDir, cwd)
		if err != nil {
			return fmt.Errorf("%s %q does not resolve on the search path, driver directory, or working directory: %w", name, *script, err)
		}
		*script = resolved
	}
	return nil
}

// SplitSearchPath parses a PATH-like environment string into its
// directory entries.
func SplitSearchPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, string(os.PathListSeparator))
}
