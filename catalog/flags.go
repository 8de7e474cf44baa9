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

package catalog

// minVersions maps each tunable optimization flag name (without the
// leading "-f") to the minimum compiler version, encoded as
// major*10000 + minor*100 + patch, that supports it.
//
// A handful of flags are deliberately absent: they affect program
// semantics, cannot be built multiple times in the same run, conflict
// with other flags being toggled, or have no disabling counterpart.
// See excludedFlags below.
var minVersions = map[string]int{
	"aggressive-loop-optimizations": 40800,
	"align-functions":               40500,
	"align-jumps":                   40500,
	"align-labels":                  40500,
	"align-loops":                   40500,
	"branch-count-reg":              40500,
	"branch-target-load-optimize":   40500,
	"btr-bb-exclusive":              40500,
	"caller-saves":                  40500,
	"combine-stack-adjustments":     40600,
	"compare-elim":                  40600,
	"conserve-stack":                40500,
	"cprop-registers":               40500,
	"crossjumping":                  40500,
	"cse-follow-jumps":              40500,
	"dce":                           40500,
	"defer-pop":                     40500,
	"delete-null-pointer-checks":    40500,
	"devirtualize":                  40600,
	"dse":                           40500,
	"early-inlining":                40500,
	"expensive-optimizations":       40500,
	"forward-propagate":             40500,
	"gcse":                          40500,
	"gcse-after-reload":             40500,
	"gcse-las":                      40500,
	"gcse-lm":                       40500,
	"gcse-sm":                       40500,
	"guess-branch-probability":      40500,
	"hoist-adjacent-loads":          40800,
	"if-conversion":                 40500,
	"if-conversion2":                40500,
	"inline":                        40500,
	"inline-atomics":                40700,
	"inline-functions":              40500,
	"inline-functions-called-once":  40500,
	"inline-small-functions":        40500,
	"ipa-cp":                        40500,
	"ipa-cp-clone":                  40500,
	"ipa-profile":                   40600,
	"ipa-pta":                       40500,
	"ipa-pure-const":                40500,
	"ipa-reference":                 40500,
	"ipa-sra":                       40500,
	"ira-hoist-pressure":            40800,
	"ivopts":                        40500,
	"merge-constants":               40500,
	"modulo-sched":                  40500,
	"move-loop-invariants":          40500,
	"omit-frame-pointer":            40500,
	"optimize-sibling-calls":        40500,
	"optimize-strlen":               40700,
	"peephole":                      40500,
	"peephole2":                     40500,
	"predictive-commoning":          40500,
	"prefetch-loop-arrays":          40500,
	"regmove":                       40500,
	"rename-registers":              40500,
	"reorder-blocks":                40500,
	"reorder-functions":             40500,
	"rerun-cse-after-loop":          40500,
	"reschedule-modulo-scheduled-loops": 40500,
	"sched-critical-path-heuristic":     40500,
	"sched-dep-count-heuristic":         40500,
	"sched-group-heuristic":             40500,
	"sched-interblock":                  40500,
	"sched-last-insn-heuristic":         40500,
	"sched-pressure":                    40500,
	"sched-rank-heuristic":              40500,
	"sched-spec":                        40500,
	"sched-spec-insn-heuristic":         40500,
	"sched-spec-load":                   40500,
	"sched-stalled-insns":               40500,
	"sched-stalled-insns-dep":           40500,
	"schedule-insns":                    40500,
	"schedule-insns2":                   40500,
	"sel-sched-pipelining":              40500,
	"sel-sched-pipelining-outer-loops":  40500,
	"sel-sched-reschedule-pipelined":    40500,
	"selective-scheduling":              40500,
	"selective-scheduling2":             40500,
	"shrink-wrap":                       40700,
	"split-ivs-in-unroller":             40500,
	"split-wide-types":                  40500,
	"thread-jumps":                      40500,
	"toplevel-reorder":                  40500,
	"tree-bit-ccp":                      40600,
	"tree-builtin-call-dce":             40500,
	"tree-ccp":                          40500,
	"tree-ch":                           40500,
	"tree-coalesce-vars":                40800,
	"tree-copy-prop":                    40500,
	"tree-copyrename":                   40500,
	"tree-cselim":                       40500,
	"tree-dce":                          40500,
	"tree-dominator-opts":               40500,
	"tree-dse":                          40500,
	"tree-forwprop":                     40500,
	"tree-fre":                          40500,
	"tree-loop-distribute-patterns":     40600,
	"tree-loop-distribution":            40500,
	"tree-loop-if-convert":              40600,
	"tree-loop-im":                      40500,
	"tree-loop-ivcanon":                 40500,
	"tree-loop-optimize":                40500,
	"tree-partial-pre":                  40800,
	"tree-phiprop":                      40500,
	"tree-pre":                          40500,
	"tree-pta":                          40500,
	"tree-reassoc":                      40500,
	"tree-scev-cprop":                   40500,
	"tree-sink":                         40500,
	"tree-slp-vectorize":                40500,
	"tree-slsr":                         40800,
	"tree-sra":                          40500,
	"tree-switch-conversion":            40500,
	"tree-tail-merge":                   40700,
	"tree-ter":                          40500,
	"tree-vect-loop-version":            40500,
	"tree-vectorize":                    40500,
	"tree-vrp":                          40500,
	"unroll-all-loops":                  40500,
	"unroll-loops":                      40500,
	"unswitch-loops":                    40500,
	"variable-expansion-in-unroller":    40500,
	"vect-cost-model":                   40500,
	"web":                               40500,
}

// excludedFlags lists flags that are never offered as candidates even
// though the underlying compiler supports them, per spec.md 4.1:
//   - affects program semantics (fcommon, fdata-sections, fstrict-aliasing)
//   - cannot be run multiple times in a single CE search (branch-target-load-optimize2)
//   - may conflict with other flags being toggled (fsection-anchors)
//   - has no -fno- disabling counterpart (ftree-coalesce-inlined-vars)
var excludedFlags = []string{
	"-fbranch-target-load-optimize2",
	"-fcommon",
	"-fdata-sections",
	"-fsection-anchors",
	"-fstrict-aliasing",
	"-ftree-coalesce-inlined-vars",
}
