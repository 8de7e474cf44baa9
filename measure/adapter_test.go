package measure

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

func TestFindExecutablesFindsOnlyExecutableRegularFiles(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable-bit semantics differ on windows")
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.txt"), []byte("x"), 0644))
	exe := writeScript(t, dir, "tool", "exit 0\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0755))

	got, err := FindExecutables(dir, nil)
	require.NoError(t, err)
	require.Equal(t, []string{exe}, got)
}

func TestFindExecutablesHonorsExcludeGlobs(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable-bit semantics differ on windows")
	}
	dir := t.TempDir()
	writeScript(t, dir, "tool", "exit 0\n")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib"), 0755))
	writeScript(t, dir, "lib/helper.so", "exit 0\n")

	got, err := FindExecutables(dir, []string{"**/*.so"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, filepath.Join(dir, "tool"), got[0])
}

func TestSumAggregatesAcrossExecutables(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts require a posix shell")
	}
	dir := t.TempDir()
	writeScript(t, dir, "a", "echo 10\n")
	writeScript(t, dir, "b", "echo 32\n")
	// The measure script reports a different value per exec path so
	// the two executables don't collapse to the same measurement.
	script := writeScript(t, dir, "measure.sh", `
for arg in "$@"; do
  case "$prev" in
    --exec-path) execpath="$arg" ;;
  esac
  prev="$arg"
done
case "$execpath" in
  *"/a") echo 10 ;;
  *"/b") echo 32 ;;
  *) echo 0 ;;
esac
`)

	total, ok, err := Sum(dir, Request{
		MeasureScript:  script,
		CompilationIDs: filepath.Join(dir, "manifest.csv"),
		ResultsPath:    filepath.Join(dir, "results.csv"),
	}, nil)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, float64(42), total)
}

func TestSumAbortsOnNonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts require a posix shell")
	}
	dir := t.TempDir()
	writeScript(t, dir, "a", "exit 0\n")
	script := writeScript(t, dir, "measure.sh", "exit 1\n")

	total, ok, err := Sum(dir, Request{
		MeasureScript:  script,
		CompilationIDs: filepath.Join(dir, "manifest.csv"),
		ResultsPath:    filepath.Join(dir, "results.csv"),
	}, nil)
	require.NoError(t, err)
	require.False(t, ok)
	require.Zero(t, total)
}

func TestSumAbortsOnNonNumericOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts require a posix shell")
	}
	dir := t.TempDir()
	writeScript(t, dir, "a", "exit 0\n")
	script := writeScript(t, dir, "measure.sh", "echo not-a-number\n")

	total, ok, err := Sum(dir, Request{
		MeasureScript:  script,
		CompilationIDs: filepath.Join(dir, "manifest.csv"),
		ResultsPath:    filepath.Join(dir, "results.csv"),
	}, nil)
	require.NoError(t, err)
	require.False(t, ok)
	require.Zero(t, total)
}

func TestSumPassesExecFlagsWhenSet(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts require a posix shell")
	}
	dir := t.TempDir()
	writeScript(t, dir, "a", "exit 0\n")
	// The measure script lives outside the install tree so that "a" is
	// the only executable measured.
	script := writeScript(t, t.TempDir(), "measure.sh", `
for arg in "$@"; do
  if [ "$arg" = "--exec-flags" ]; then
    echo 99
    exit 0
  fi
done
echo 0
`)

	total, ok, err := Sum(dir, Request{
		MeasureScript:  script,
		CompilationIDs: filepath.Join(dir, "manifest.csv"),
		ResultsPath:    filepath.Join(dir, "results.csv"),
		ExecFlags:      "--iterations=5",
	}, nil)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, float64(99), total)
}
