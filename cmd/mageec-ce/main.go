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

// Command mageec-ce is the CLI entry point for the Combined
// Elimination compiler-flag autotuner: it dispatches to the ce
// search, feature extraction, and version subcommands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mageec-ce",
		Short:         "Combined Elimination compiler-flag autotuner",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCECmd())
	root.AddCommand(newExtractCmd())
	root.AddCommand(newVersionCmd())
	return root
}
