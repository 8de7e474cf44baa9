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

	"android/soong/mageec/config"
	"android/soong/mageec/extract"
)

func newExtractCmd() *cobra.Command {
	var (
		srcDir, buildDir, installDir string
		cc, cxx, fort                string
		databasePath, pluginPath     string
		buildScript, buildFlags, out string
		debug                        bool
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Run a single feature-extraction build",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := extract.Request{
				SrcDir:       srcDir,
				BuildDir:     buildDir,
				InstallDir:   installDir,
				CC:           cc,
				CXX:          cxx,
				Fort:         fort,
				SearchPath:   config.SplitSearchPath(envPath()),
				BuildScript:  buildScript,
				BuildFlags:   buildFlags,
				DatabasePath: databasePath,
				PluginPath:   pluginPath,
				OutPath:      out,
				Debug:        debug,
			}
			return extract.Run(req)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&srcDir, "src-dir", "", "directory containing the source to build")
	flags.StringVar(&buildDir, "build-dir", "", "build directory; must not pre-exist")
	flags.StringVar(&installDir, "install-dir", "", "install directory; must not pre-exist")
	flags.StringVar(&cc, "cc", "", "command to use to compile C source")
	flags.StringVar(&cxx, "cxx", "", "command to use to compile C++ source")
	flags.StringVar(&fort, "fort", "", "command to use to compile Fortran source")
	flags.StringVar(&databasePath, "database", "", "mageec feature database path")
	flags.StringVar(&pluginPath, "plugin", "", "path to the compiler feature-extraction plugin")
	flags.StringVar(&buildScript, "build-script", "", "script used to build the benchmark")
	flags.StringVar(&buildFlags, "build-flags", "", "common arguments used when building")
	flags.StringVar(&out, "out", "", "file to write extracted features to")
	flags.BoolVar(&debug, "debug", false, "enable plugin debug output")

	for _, name := range []string{"src-dir", "build-dir", "install-dir", "cc", "cxx", "fort", "database", "plugin", "build-script", "out"} {
		cmd.MarkFlagRequired(name)
	}

	return cmd
}
