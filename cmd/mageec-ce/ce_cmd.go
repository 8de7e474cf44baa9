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

package main

import (
	"github.com/spf13/cobra"

	"android/soong/mageec/ce"
	"android/soong/mageec/config"
	"android/soong/mageec/logger"
)

func newCECmd() *cobra.Command {
	var (
		srcDir, runDir                string
		cc, cxx, fort                 string
		databasePath, featuresPath    string
		buildScript, measureScript    string
		preset, execFlags, buildFlags string
		jobs                          int
		debug, verbose                bool
		logPath                       string
		measureExclude                []string
	)

	cmd := &cobra.Command{
		Use:   "ce",
		Short: "Run the Combined Elimination search",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.New(logPath, verbose || debug)
			if err != nil {
				return err
			}
			defer log.Cleanup()

			cfg := config.RunConfig{
				SrcDir:              srcDir,
				RunDir:              runDir,
				CC:                  cc,
				CXX:                 cxx,
				Fort:                fort,
				DatabasePath:        databasePath,
				FeaturesPath:        featuresPath,
				BuildScript:         buildScript,
				MeasureScript:       measureScript,
				Preset:              preset,
				Jobs:                jobs,
				Debug:               debug,
				ExecFlags:           execFlags,
				BuildFlags:          buildFlags,
				SearchPath:          config.SplitSearchPath(envPath()),
				MeasureExcludeGlobs: measureExclude,
			}

			outcome, err := ce.Run(cfg, log)
			if err != nil {
				return err
			}

			log.Printf("search complete: result=%g flags=%s", outcome.BestResult, outcome.BestFlags.String())
			cmd.Println(outcome.BestFlags.String())
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&srcDir, "src-dir", "", "directory containing the source to build")
	flags.StringVar(&runDir, "run-dir", "", "directory to hold per-trial build/install trees and the results CSV")
	flags.StringVar(&cc, "cc", "", "command to use to compile C source")
	flags.StringVar(&cxx, "cxx", "", "command to use to compile C++ source")
	flags.StringVar(&fort, "fort", "", "command to use to compile Fortran source")
	flags.StringVar(&databasePath, "database", "", "mageec feature database path")
	flags.StringVar(&featuresPath, "features", "", "path to the features file produced by extract")
	flags.StringVar(&buildScript, "build-script", "", "script used to build the benchmark")
	flags.StringVar(&measureScript, "measure-script", "", "script used to measure a produced executable")
	flags.StringVar(&preset, "preset", config.PresetO3, "base optimization preset: -O3 or -Os")
	flags.StringVar(&execFlags, "exec-flags", "", "flags forwarded to the measure script")
	flags.StringVar(&buildFlags, "build-flags", "", "operator flags; stored in the run configuration but not added to the baseline or trial builds")
	flags.IntVar(&jobs, "jobs", 1, "bounded worker count for the probe phase")
	flags.BoolVar(&debug, "debug", false, "enable wrapper-compiler debug output")
	flags.BoolVar(&verbose, "verbose", false, "enable verbose logging")
	flags.StringVar(&logPath, "log-file", "", "also write the log to this file")
	flags.StringSliceVar(&measureExclude, "measure-exclude", nil, "doublestar glob(s) relative to the install tree to skip when discovering executables to measure, e.g. **/*.so")

	for _, name := range []string{"src-dir", "run-dir", "cc", "cxx", "fort", "database", "features", "build-script", "measure-script"} {
		cmd.MarkFlagRequired(name)
	}

	return cmd
}
