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

// Package ce wires the Flag Catalog, Trial Runner and CE Search
// Driver together into the end-to-end flow described in spec.md 4.8:
// detect the compiler version, build an unmeasured baseline, run
// trial 0 with every candidate flag enabled, then hand off to the
// search loop.
package ce

import (
	"fmt"
	"os"
	"path/filepath"

	"android/soong/mageec/buildorch"
	"android/soong/mageec/catalog"
	"android/soong/mageec/config"
	"android/soong/mageec/flagvec"
	"android/soong/mageec/logger"
	"android/soong/mageec/search"
	"android/soong/mageec/trial"
)

// Run executes the full CE search for cfg and returns the best flag
// vector and result found.
func Run(cfg config.RunConfig, log *logger.Logger) (search.Outcome, error) {
	if err := cfg.Validate(); err != nil {
		return search.Outcome{}, fmt.Errorf("ce: %w", err)
	}

	version, err := cfg.CompilerVersion()
	if err != nil {
		return search.Outcome{}, fmt.Errorf("ce: %w", err)
	}

	cat := catalog.NewCatalog()
	candidateFlags := cat.Candidates(version)
	names := make([]string, len(candidateFlags))
	for i, f := range candidateFlags {
		names[i] = f.Name
	}

	baselineDir := filepath.Join(cfg.RunDir, "baseline")
	baselineOK, err := baseline(cfg, baselineDir)
	if err != nil {
		return search.Outcome{}, fmt.Errorf("ce: baseline: %w", err)
	}
	if !baselineOK {
		return search.Outcome{}, fmt.Errorf("ce: baseline build failed; search cannot proceed")
	}

	runTrial := func(id int, flags *flagvec.Vector) (float64, bool) {
		req := trial.Request{
			ID:            id,
			SrcDir:        cfg.SrcDir,
			TrialDir:      cfg.TrialDir(id),
			CC:            cfg.CC,
			CXX:           cfg.CXX,
			Fort:          cfg.Fort,
			BuildScript:   cfg.BuildScript,
			MeasureScript: cfg.MeasureScript,
			ResultsPath:   cfg.ResultsPath(),
			DatabasePath:  cfg.DatabasePath,
			FeaturesPath:  cfg.FeaturesPath,
			Debug:         cfg.Debug,
			Preset:        cfg.Preset,
			Flags:         flags,
			ExecFlags:     cfg.ExecFlags,
			ExcludeGlobs:  cfg.MeasureExcludeGlobs,
		}
		res, err := trial.Run(req, log)
		if err != nil && log != nil {
			log.Printf("trial %d errored: %v", id, err)
		}
		return res.Result, res.Succeeded
	}

	trial0Flags := flagvec.New(names)
	const trial0ID = 0
	result0, ok := runTrial(trial0ID, trial0Flags)
	if log != nil {
		log.Printf("CE: (best) id: %d result: %g flags: %s", trial0ID, result0, trial0Flags.String())
	}
	if !ok {
		return search.Outcome{}, fmt.Errorf("ce: trial 0 failed; search cannot proceed")
	}

	driver := &search.Driver{
		Trial:      runTrial,
		Candidates: names,
		Jobs:       cfg.Jobs,
		Log:        log,
	}

	return driver.Run(trial0Flags, result0, trial0ID+1)
}

// baseline builds the source tree at cfg.Preset with no wrapper
// instrumentation, purely to verify buildability before any trial
// runs (spec.md 4.8: "This baseline is not measured; it only
// verifies buildability").
func baseline(cfg config.RunConfig, dir string) (bool, error) {
	buildDir := filepath.Join(dir, "build")
	installDir := filepath.Join(dir, "install")
	if err := os.MkdirAll(buildDir, 0755); err != nil {
		return false, fmt.Errorf("creating baseline build dir: %w", err)
	}
	if err := os.MkdirAll(installDir, 0755); err != nil {
		return false, fmt.Errorf("creating baseline install dir: %w", err)
	}

	return buildorch.Build(buildorch.Request{
		BuildScript: cfg.BuildScript,
		SrcDir:      cfg.SrcDir,
		BuildDir:    buildDir,
		InstallDir:  installDir,
		CC:          cfg.CC,
		CXX:         cfg.CXX,
		Fort:        cfg.Fort,
		BuildFlags:  cfg.Preset,
	})
}
