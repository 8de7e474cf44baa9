package ce

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"android/soong/mageec/config"
)

func writeExecutable(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
}

// fakeCC reports a fixed -dumpversion and otherwise exits 0, standing
// in for the real compiler during version detection and the build
// script's --cc/--cxx/--fort resolution checks. The version is below
// every catalog entry's minimum so the candidate set is empty and the
// search terminates after trial 0 without any probes — this exercises
// the full Run() wiring (validation, baseline, trial 0, handoff to
// the search driver) without spawning hundreds of probe subprocesses.
const fakeCC = `
if [ "$1" = "-dumpversion" ]; then
  echo 4.4.0
  exit 0
fi
exit 0
`

func TestRunEndToEnd(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts require a posix shell")
	}
	dir := t.TempDir()
	srcDir := filepath.Join(dir, "src")
	runDir := filepath.Join(dir, "run")
	require.NoError(t, os.MkdirAll(srcDir, 0755))
	require.NoError(t, os.MkdirAll(runDir, 0755))

	bindir := filepath.Join(dir, "bin")
	require.NoError(t, os.MkdirAll(bindir, 0755))
	for _, cc := range []string{"cc", "c++", "gfortran", "mageec-cc", "mageec-c++", "mageec-gfortran"} {
		writeExecutable(t, filepath.Join(bindir, cc), fakeCC)
	}

	build := filepath.Join(dir, "build.sh")
	writeExecutable(t, build, `
for arg in "$@"; do
  case "$prev" in
    --install-dir) installdir="$arg" ;;
  esac
  prev="$arg"
done
: > "$installdir/out"
chmod +x "$installdir/out"
exit 0
`)
	measureScript := filepath.Join(dir, "measure.sh")
	writeExecutable(t, measureScript, "echo 50\n")

	databasePath := filepath.Join(dir, "mageec.db")
	featuresPath := filepath.Join(dir, "features.csv")
	require.NoError(t, os.WriteFile(databasePath, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(featuresPath, []byte("x"), 0644))

	cfg := config.RunConfig{
		SrcDir:        srcDir,
		RunDir:        runDir,
		CC:            "cc",
		CXX:           "c++",
		Fort:          "gfortran",
		DatabasePath:  databasePath,
		FeaturesPath:  featuresPath,
		BuildScript:   build,
		MeasureScript: measureScript,
		Preset:        config.PresetO3,
		Jobs:          2,
		SearchPath:    []string{bindir},
	}

	outcome, err := Run(cfg, nil)
	require.NoError(t, err)
	require.Equal(t, float64(50), outcome.BestResult)
}

func TestRunFailsValidationBeforeAnyBuild(t *testing.T) {
	_, err := Run(config.RunConfig{}, nil)
	require.Error(t, err)
}
