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

// Package trial runs one search trial (spec.md 4.7): it prepares a
// fresh build/install tree, invokes the build orchestrator with
// wrapper-compiler commands that gather a per-trial compilation
// manifest, then measures every produced executable and returns the
// trial's scalar result or the failure sentinel 0.
package trial

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"

	"android/soong/mageec/buildorch"
	"android/soong/mageec/flagvec"
	"android/soong/mageec/logger"
	"android/soong/mageec/manifest"
	"android/soong/mageec/measure"
)

const wrapperPrefix = "mageec-"

// FailedResult is the sentinel returned for any trial that could not
// be completed; valid results are strictly positive.
const FailedResult = 0

// Request bundles everything one trial needs to run independently of
// any other concurrently running trial.
type Request struct {
	ID int

	SrcDir   string
	TrialDir string // run_dir/test.<id>; Build and Install are created under it
	CC, CXX  string
	Fort     string

	BuildScript   string
	MeasureScript string
	ResultsPath   string // shared global results CSV for the whole run

	DatabasePath  string // wrapper -fmageec-database=
	FeaturesPath  string // wrapper -fmageec-features=
	Debug         bool   // wrapper -fmageec-debug

	Preset       string // base optimization preset token, e.g. -O3 or -Os
	Flags        *flagvec.Vector
	ExecFlags    string
	ExcludeGlobs []string
}

// Result is what a completed (or failed) trial reports back to the
// search driver.
type Result struct {
	ID          int
	Result      float64
	Succeeded   bool
	FlagsDigest uint64 // xxhash of the resolved flag vector, for log correlation only
}

// Run executes one trial end to end.
func Run(req Request, log *logger.Logger) (Result, error) {
	digest := xxhash.Sum64String(req.Flags.String())
	fail := Result{ID: req.ID, Result: FailedResult, Succeeded: false, FlagsDigest: digest}

	buildDir := filepath.Join(req.TrialDir, "build")
	installDir := filepath.Join(req.TrialDir, "install")

	for _, dir := range []string{buildDir, installDir} {
		if _, err := os.Stat(dir); err == nil {
			return fail, fmt.Errorf("trial %d: %s already exists", req.ID, dir)
		}
	}
	if err := os.MkdirAll(buildDir, 0755); err != nil {
		return fail, fmt.Errorf("trial %d: creating build dir: %w", req.ID, err)
	}
	if err := os.MkdirAll(installDir, 0755); err != nil {
		return fail, fmt.Errorf("trial %d: creating install dir: %w", req.ID, err)
	}

	manifestPath := filepath.Join(installDir, "compilations.csv")

	ok, err := buildorch.Build(buildorch.Request{
		BuildScript: req.BuildScript,
		SrcDir:      req.SrcDir,
		BuildDir:    buildDir,
		InstallDir:  installDir,
		CC:          wrapperCommand(req.CC),
		CXX:         wrapperCommand(req.CXX),
		Fort:        wrapperCommand(req.Fort),
		BuildFlags:  mergeFlags(req.Preset, req.Flags, wrapperFlags(req, manifestPath)),
	})
	if err != nil {
		return fail, fmt.Errorf("trial %d: %w", req.ID, err)
	}
	if !ok {
		if log != nil {
			log.Verbosef("trial %d: build failed", req.ID)
		}
		return fail, nil
	}

	if req.Debug {
		m, err := manifest.Read(manifestPath, log)
		if err != nil {
			return fail, fmt.Errorf("trial %d: reading compilation manifest for debug snapshot: %w", req.ID, err)
		}
		debugPath := filepath.Join(installDir, "manifest-debug.json")
		if err := manifest.WriteDebugSnapshot(debugPath, m); err != nil {
			return fail, fmt.Errorf("trial %d: %w", req.ID, err)
		}
		if log != nil {
			log.Verbosef("trial %d: wrote manifest debug snapshot to %s", req.ID, debugPath)
		}
	}

	total, measured, err := measure.Sum(installDir, measure.Request{
		MeasureScript:  req.MeasureScript,
		CompilationIDs: manifestPath,
		ResultsPath:    req.ResultsPath,
		ExecFlags:      req.ExecFlags,
		ExcludeGlobs:   req.ExcludeGlobs,
	}, log)
	if err != nil {
		return fail, fmt.Errorf("trial %d: %w", req.ID, err)
	}
	if !measured {
		if log != nil {
			log.Verbosef("trial %d: measurement failed", req.ID)
		}
		return fail, nil
	}

	return Result{ID: req.ID, Result: total, Succeeded: true, FlagsDigest: digest}, nil
}

// wrapperCommand rewrites a compiler command to its wrapper variant.
func wrapperCommand(cc string) string {
	if cc == "" {
		return cc
	}
	dir, base := filepath.Split(cc)
	return filepath.Join(dir, wrapperPrefix+base)
}

func wrapperFlags(req Request, manifestPath string) string {
	flags := fmt.Sprintf("-fmageec-mode=gather -fmageec-database=%s -fmageec-features=%s -fmageec-out=%s",
		req.DatabasePath, req.FeaturesPath, manifestPath)
	if req.Debug {
		flags += " -fmageec-debug"
	}
	return flags
}

func mergeFlags(preset string, flags *flagvec.Vector, wrapper string) string {
	parts := append([]string{preset}, flags.Tokens()...)
	parts = append(parts, wrapper)
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += p
	}
	return out
}
