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

// Package extract implements the Feature Extraction Driver
// (spec.md 4.9): a single, non-searching build where the compilers
// additionally load a feature-extraction plugin.
package extract

import (
	"fmt"
	"os"

	"android/soong/mageec/buildorch"
	"android/soong/mageec/pathresolve"
)

// pluginName is the fixed compiler-plugin identifier used to key its
// -fplugin-arg-<name>-<key>=<value> flags.
const pluginName = "libgcc_feature_extract"

// Request bundles everything one feature-extraction run needs.
type Request struct {
	SrcDir     string
	BuildDir   string // must not pre-exist; created by Run
	InstallDir string // must not pre-exist; created by Run

	CC, CXX, Fort string
	SearchPath    []string

	BuildScript string
	BuildFlags  string // operator-supplied flags, appended after the plugin flags

	DatabasePath string // must exist
	PluginPath   string // must exist
	OutPath      string // features output path

	Debug bool
}

func (r Request) validate() error {
	if _, err := os.Stat(r.SrcDir); err != nil {
		return fmt.Errorf("source directory %q does not exist", r.SrcDir)
	}
	if _, err := os.Stat(r.DatabasePath); err != nil {
		return fmt.Errorf("database %q does not exist", r.DatabasePath)
	}
	if _, err := os.Stat(r.PluginPath); err != nil {
		return fmt.Errorf("plugin %q does not exist", r.PluginPath)
	}
	for name, dir := range map[string]string{"build-dir": r.BuildDir, "install-dir": r.InstallDir} {
		if _, err := os.Stat(dir); err == nil {
			return fmt.Errorf("%s %q already exists", name, dir)
		}
	}
	return nil
}

// resolve runs the Path/Script Resolver fallback chain (search path,
// driver directory, working directory) over CC, CXX, Fort and
// BuildScript, returning the resolved absolute paths.
func (r Request) resolve(driverDir, cwd string) (cc, cxx, fort, buildScript string, err error) {
	for name, cmd := range map[string]string{"cc": r.CC, "cxx": r.CXX, "fort": r.Fort} {
		resolved, resolveErr := pathresolve.Resolve(cmd, r.SearchPath, driverDir, cwd)
		if resolveErr != nil {
			return "", "", "", "", fmt.Errorf("compiler %q (%s) does not resolve on the search path, driver directory, or working directory: %w", cmd, name, resolveErr)
		}
		switch name {
		case "cc":
			cc = resolved
		case "cxx":
			cxx = resolved
		case "fort":
			fort = resolved
		}
	}
	buildScript, err = pathresolve.Resolve(r.BuildScript, r.SearchPath, driverDir, cwd)
	if err != nil {
		return "", "", "", "", fmt.Errorf("build script %q does not resolve on the search path, driver directory, or working directory: %w", r.BuildScript, err)
	}
	return cc, cxx, fort, buildScript, nil
}

// Run performs the single feature-extraction build. It returns an
// error for any precondition failure or build failure; there is no
// search loop and no measurement phase.
func Run(r Request) error {
	if err := r.validate(); err != nil {
		return err
	}

	driverDir, err := pathresolve.DriverDir()
	if err != nil {
		return err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determining working directory: %w", err)
	}
	cc, cxx, fort, buildScript, err := r.resolve(driverDir, cwd)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(r.BuildDir, 0755); err != nil {
		return fmt.Errorf("creating build dir: %w", err)
	}
	if err := os.MkdirAll(r.InstallDir, 0755); err != nil {
		return fmt.Errorf("creating install dir: %w", err)
	}

	flags := pluginFlags(r)
	if r.BuildFlags != "" {
		flags += " " + r.BuildFlags
	}

	ok, err := buildorch.Build(buildorch.Request{
		BuildScript: buildScript,
		SrcDir:      r.SrcDir,
		BuildDir:    r.BuildDir,
		InstallDir:  r.InstallDir,
		CC:          cc,
		CXX:         cxx,
		Fort:        fort,
		BuildFlags:  flags,
	})
	if err != nil {
		return fmt.Errorf("feature extraction build: %w", err)
	}
	if !ok {
		return fmt.Errorf("feature extraction build failed")
	}
	return nil
}

// pluginFlags builds the -fplugin/-fplugin-arg-* flag string, in the
// same order as the original mageec.py: debug (if set), database,
// out.
func pluginFlags(r Request) string {
	flags := "-fplugin=" + r.PluginPath
	if r.Debug {
		flags += " -fplugin-arg-" + pluginName + "-debug"
	}
	flags += " -fplugin-arg-" + pluginName + "-database=" + r.DatabasePath
	flags += " -fplugin-arg-" + pluginName + "-out=" + r.OutPath
	return flags
}
