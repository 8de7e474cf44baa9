package search

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"android/soong/mageec/flagvec"
)

// scriptedTrial returns a TrialFunc that looks up its result by the
// set of currently-disabled flag names, falling back to the
// all-enabled trial-0 result. It is safe for concurrent probe-phase
// calls.
func scriptedTrial(byDisabled map[string]float64, failing map[string]bool) TrialFunc {
	var mu sync.Mutex
	return func(id int, flags *flagvec.Vector) (float64, bool) {
		mu.Lock()
		defer mu.Unlock()
		key := disabledKey(flags)
		if failing[key] {
			return 0, false
		}
		r, ok := byDisabled[key]
		if !ok {
			return 0, false
		}
		return r, true
	}
}

func disabledKey(v *flagvec.Vector) string {
	key := ""
	for _, t := range v.Tokens() {
		if len(t) > 5 && t[:5] == "-fno-" {
			key += t + ","
		}
	}
	return key
}

func TestScenarioSingleFlagCatalog(t *testing.T) {
	// spec.md 8 scenario 1.
	trial := scriptedTrial(map[string]float64{
		"-fno-dce,": 90,
	}, nil)
	d := &Driver{Trial: trial, Candidates: []string{"dce"}, Jobs: 1}

	best := flagvec.New([]string{"dce"})
	out, err := d.Run(best, 100, 1)
	require.NoError(t, err)
	require.Equal(t, float64(90), out.BestResult)
	require.Equal(t, []string{"-fno-dce"}, out.BestFlags.Tokens())
	require.Equal(t, 1, out.Trials)
}

func TestScenarioNoiseTieWithinSlack(t *testing.T) {
	// spec.md 8 scenario 2: A -> 101 excluded (101 < 101 is false),
	// B -> 99 promising and strictly better, committed without
	// re-measuring A.
	var aCalled bool
	var mu sync.Mutex
	trial := func(id int, flags *flagvec.Vector) (float64, bool) {
		mu.Lock()
		defer mu.Unlock()
		key := disabledKey(flags)
		switch key {
		case "-fno-a,":
			aCalled = true
			return 101, true
		case "-fno-b,":
			return 99, true
		}
		return 0, false
	}
	d := &Driver{Trial: trial, Candidates: []string{"a", "b"}, Jobs: 2}

	best := flagvec.New([]string{"a", "b"})
	out, err := d.Run(best, 100, 1)
	require.NoError(t, err)
	require.Equal(t, float64(99), out.BestResult)
	require.True(t, out.BestFlags.IsEnabled("a"))
	require.False(t, out.BestFlags.IsEnabled("b"))
	require.False(t, aCalled, "A must never be re-measured once excluded at selection time")
}

func TestScenarioStrictRemeasurement(t *testing.T) {
	// spec.md 8 scenario 3: A -> 95 (committed immediately, strict).
	// B -> 99 at trial 0 flags, but re-measured against the new best
	// (A disabled) returns 96, which is >= 95 so NOT committed.
	calls := map[string]int{}
	var mu sync.Mutex
	trial := func(id int, flags *flagvec.Vector) (float64, bool) {
		mu.Lock()
		defer mu.Unlock()
		key := disabledKey(flags)
		calls[key]++
		switch key {
		case "-fno-a,":
			return 95, true
		case "-fno-b,":
			return 99, true
		case "-fno-a,-fno-b,":
			return 96, true
		}
		return 0, false
	}
	d := &Driver{Trial: trial, Candidates: []string{"a", "b"}, Jobs: 2}

	best := flagvec.New([]string{"a", "b"})
	out, err := d.Run(best, 100, 1)
	require.NoError(t, err)
	require.Equal(t, float64(95), out.BestResult)
	require.False(t, out.BestFlags.IsEnabled("a"))
	require.True(t, out.BestFlags.IsEnabled("b"))
	require.GreaterOrEqual(t, calls["-fno-a,-fno-b,"], 1, "B must be re-measured against the post-commit best at least once")
}

func TestScenarioFailedProbe(t *testing.T) {
	// spec.md 8 scenario 4: probe A fails, probe B = 90 committed.
	// Candidates become {A}; the next iteration re-probes A fresh
	// (now against a best that already has B disabled) and this time
	// succeeds at 80, which also commits.
	var mu sync.Mutex
	trial := func(id int, flags *flagvec.Vector) (float64, bool) {
		mu.Lock()
		defer mu.Unlock()
		switch disabledKey(flags) {
		case "-fno-a,": // iteration 1: B still enabled, A's probe fails
			return 0, false
		case "-fno-b,": // iteration 1: probe B
			return 90, true
		case "-fno-a,-fno-b,": // iteration 2: B already committed, A re-probed fresh
			return 80, true
		}
		return 0, false
	}
	d := &Driver{Trial: trial, Candidates: []string{"a", "b"}, Jobs: 1}

	best := flagvec.New([]string{"a", "b"})
	out, err := d.Run(best, 100, 1)
	require.NoError(t, err)
	require.Equal(t, float64(80), out.BestResult)
	require.False(t, out.BestFlags.IsEnabled("a"))
	require.False(t, out.BestFlags.IsEnabled("b"))
}

func TestEmptyCandidatesTerminateImmediately(t *testing.T) {
	trial := func(id int, flags *flagvec.Vector) (float64, bool) {
		t.Fatalf("no trial should run with an empty candidate set")
		return 0, false
	}
	d := &Driver{Trial: trial, Candidates: nil, Jobs: 1}

	best := flagvec.New(nil)
	out, err := d.Run(best, 100, 1)
	require.NoError(t, err)
	require.Equal(t, float64(100), out.BestResult)
	require.Equal(t, 0, out.Trials)
}

func TestJobsMustBePositive(t *testing.T) {
	d := &Driver{Trial: func(int, *flagvec.Vector) (float64, bool) { return 0, false }, Jobs: 0}
	_, err := d.Run(flagvec.New(nil), 1, 0)
	require.Error(t, err)
}

func TestBestResultMonotonicAndTerminatesWhenNothingImproves(t *testing.T) {
	// No probe ever beats the trial-0 result, so the search must
	// commit nothing and terminate after exactly one (empty) iteration
	// of probes.
	names := []string{"a", "b", "c"}
	trial := scriptedTrial(map[string]float64{
		"-fno-a,": 105,
		"-fno-b,": 110,
		"-fno-c,": 103,
	}, nil)
	d := &Driver{Trial: trial, Candidates: names, Jobs: 3}

	out, err := d.Run(flagvec.New(names), 100, 1)
	require.NoError(t, err)
	require.Equal(t, float64(100), out.BestResult)
	require.Equal(t, []string{"-fa", "-fb", "-fc"}, out.BestFlags.Tokens())
	require.Equal(t, 3, out.Trials)
}
