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

// Command mageec-measure-elfsize is a concrete measure script (spec.md
// 6): given one executable, the compilation manifest that produced
// it, and a results file to append to, it reports the code-size
// objective for that executable on stdout and records the per-
// compilation breakdown via the results package.
//
// It implements the same CLI contract the trial runner invokes for
// any measure script, so it can be pointed at directly with
// --measure-script.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"android/soong/mageec/elfsize"
	"android/soong/mageec/manifest"
	"android/soong/mageec/results"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("mageec-measure-elfsize", pflag.ContinueOnError)
	execPath := flags.String("exec-path", "", "executable to measure")
	compilationIDs := flags.String("compilation-ids", "", "path to the compilation manifest CSV")
	out := flags.String("out", "", "results CSV to append measurement rows to")
	_ = flags.String("exec-flags", "", "ignored: code-size measurement does not execute the binary")

	if err := flags.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if *execPath == "" || *compilationIDs == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "mageec-measure-elfsize: --exec-path, --compilation-ids and --out are required")
		return 2
	}

	man, err := manifest.Read(*compilationIDs, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mageec-measure-elfsize: reading manifest: %v\n", err)
		return 1
	}

	total, rows, err := elfsize.Measure(*execPath, man, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mageec-measure-elfsize: %v\n", err)
		return 1
	}

	sink := results.Open(*out)
	if err := sink.Append(rows); err != nil {
		fmt.Fprintf(os.Stderr, "mageec-measure-elfsize: writing results: %v\n", err)
		return 1
	}

	fmt.Println(total)
	return 0
}
