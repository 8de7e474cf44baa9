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

// Package search implements the Combined Elimination driver
// (spec.md 4.8): a greedy, noise-tolerant flag-elimination loop that
// alternates a bounded-parallel probe phase with a strictly serial
// commit phase.
package search

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"

	"android/soong/mageec/flagvec"
	"android/soong/mageec/logger"
)

// commitSlack is the noise-tolerance margin described in spec.md 4.8:
// a probe is "promising" iff its result is strictly less than
// best_result * (1 + commitSlack).
const commitSlack = 0.01

// TrialFunc runs one trial and reports its scalar result. ok is false
// for the failure sentinel; the search treats a failed trial as
// no-information, never as a removal signal.
type TrialFunc func(id int, flags *flagvec.Vector) (result float64, ok bool)

// Driver runs the CE search loop over an initial candidate flag set.
type Driver struct {
	Trial      TrialFunc
	Candidates []string // catalog-eligible flag names at the detected compiler version
	Jobs       int      // bounded worker count J >= 1 for the probe phase
	Log        *logger.Logger
}

// Outcome is the final state of a completed search.
type Outcome struct {
	BestFlags  *flagvec.Vector
	BestResult float64
	Trials     int // trials submitted by Run (probes and re-measurements); trial 0 is not counted
}

// probeResult is one flag-disable probe's outcome, tagged with its
// trial id so commit ordering ties break on submission order.
type probeResult struct {
	flag   string
	result float64
	ok     bool
	id     int
}

// Run executes the CE iteration (spec.md 4.8 step "CE iteration")
// starting from trial0Result (the already-measured, all-flags-enabled
// trial 0) and nextTrialID (the next unused trial identifier). It
// returns the final best flag vector, result, and number of trials
// this call submitted.
func (d *Driver) Run(bestFlags *flagvec.Vector, trial0Result float64, nextTrialID int) (Outcome, error) {
	if d.Jobs < 1 {
		return Outcome{}, fmt.Errorf("search: Jobs must be >= 1, got %d", d.Jobs)
	}

	best := bestFlags.Clone()
	bestResult := trial0Result
	candidates := append([]string(nil), d.Candidates...)
	nextID := nextTrialID
	submitted := 0

	for {
		changed := false

		probes, n := d.probePhase(best, candidates, &nextID)
		submitted += n

		promising := selectPromising(probes, bestResult)
		sort.SliceStable(promising, func(i, j int) bool {
			return promising[i].result < promising[j].result
		})

		if len(promising) > 0 {
			top := promising[0]
			if top.result < bestResult {
				best.Disable(top.flag)
				bestResult = top.result
				candidates = removeFlag(candidates, top.flag)
				changed = true
				if d.Log != nil {
					d.Log.Verbosef("CE: (best) id: %d result: %g flags: %s", top.id, top.result, best.String())
				}
				promising = promising[1:]
			}

			for _, p := range promising {
				trial := best.Clone()
				trial.Disable(p.flag)
				id := nextID
				nextID++
				submitted++
				r, ok := d.Trial(id, trial)
				if d.Log != nil {
					d.Log.Verbosef("CE: (test) id: %d result: %g flag: %s", id, r, p.flag)
				}
				if !ok {
					continue
				}
				if r < bestResult {
					best.Disable(p.flag)
					bestResult = r
					candidates = removeFlag(candidates, p.flag)
					changed = true
					if d.Log != nil {
						d.Log.Verbosef("CE: (best) id: %d result: %g flags: %s", id, r, best.String())
					}
				}
			}
		}

		if !changed {
			return Outcome{BestFlags: best, BestResult: bestResult, Trials: submitted}, nil
		}
	}
}

// probePhase submits one disable-probe per remaining candidate,
// bounded by d.Jobs concurrent trials, and waits for all of them
// (spec.md 5: "a barrier, not a pipeline").
func (d *Driver) probePhase(best *flagvec.Vector, candidates []string, nextID *int) ([]probeResult, int) {
	results := make([]probeResult, len(candidates))
	ids := make([]int, len(candidates))
	for i := range candidates {
		ids[i] = *nextID
		*nextID++
	}

	sem := semaphore.NewWeighted(int64(d.Jobs))
	ctx := context.Background()
	var wg sync.WaitGroup

	for i, flag := range candidates {
		i, flag := i, flag
		wg.Add(1)
		if err := sem.Acquire(ctx, 1); err != nil {
			// Acquire only fails if ctx is cancelled; Background never is.
			wg.Done()
			continue
		}
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			trial := best.Clone()
			trial.Disable(flag)
			r, ok := d.Trial(ids[i], trial)
			results[i] = probeResult{flag: flag, result: r, ok: ok, id: ids[i]}
		}()
	}
	wg.Wait()

	return results, len(candidates)
}

// selectPromising applies the noise-tolerant admission rule: a probe
// is promising iff r < bestResult * (1 + commitSlack). Failed probes
// never qualify.
func selectPromising(probes []probeResult, bestResult float64) []probeResult {
	var out []probeResult
	threshold := bestResult * (1 + commitSlack)
	for _, p := range probes {
		if !p.ok {
			continue
		}
		if p.result < threshold {
			out = append(out, p)
		}
	}
	return out
}

func removeFlag(candidates []string, flag string) []string {
	out := candidates[:0:0]
	for _, c := range candidates {
		if c != flag {
			out = append(out, c)
		}
	}
	return out
}
