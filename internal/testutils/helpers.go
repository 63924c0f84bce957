// Package testutils holds fixtures shared by package tests: a throwaway
// course layout and a shell script standing in for the compiler.
package testutils

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// FakeCompiler mimics the subset of rustc journey relies on. Sources
// containing COMPILE_ERROR fail to build, SLOW hangs, and test binaries built
// from sources containing PANIC report a failing test on stdout and the
// panic on stderr.
const FakeCompiler = `#!/bin/sh
test_mode=0
out=""
file=""
while [ $# -gt 0 ]; do
  case "$1" in
    --version) echo "rustc 1.80.0 (fake)"; exit 0 ;;
    --edition=*) ;;
    --test) test_mode=1 ;;
    -o) shift; out="$1" ;;
    *) file="$1" ;;
  esac
  shift
done
if grep -q SLOW "$file"; then
  exec sleep 10
fi
if grep -q COMPILE_ERROR "$file"; then
  echo "error[E0425]: cannot find value ` + "`x`" + ` in this scope" >&2
  echo " --> $file:3:5" >&2
  echo "error: aborting due to 1 previous error" >&2
  exit 1
fi
if [ "$test_mode" = 1 ]; then
  if grep -q PANIC "$file"; then
    printf '#!/bin/sh\necho "test tests::it_works ... FAILED"\necho "thread main panicked" >&2\nexit 101\n' > "$out"
  else
    printf '#!/bin/sh\necho "test result: ok. 1 passed"\nexit 0\n' > "$out"
  fi
  chmod +x "$out"
else
  : > "$out"
fi
exit 0
`

// WriteFakeCompiler installs FakeCompiler as "rustc" in a temporary
// directory and returns its path. Tests are skipped where /bin/sh is absent.
func WriteFakeCompiler(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake toolchain is a shell script")
	}

	path := filepath.Join(t.TempDir(), "rustc")
	require.NoError(t, os.WriteFile(path, []byte(FakeCompiler), 0o755))
	return path
}

// CreateTempProject lays out a course: the registry as info.toml plus the
// given files, keyed by slash-separated path relative to the project root.
func CreateTempProject(t *testing.T, registry string, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "info.toml"), []byte(registry), 0o644))
	for rel, content := range files {
		WriteFile(t, dir, rel, content)
	}
	return dir
}

// WriteFile writes content to rel under dir, creating parent directories.
func WriteFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// WriteStatus records the named exercises as completed in the default
// status file under dir.
func WriteStatus(t *testing.T, dir string, completed ...string) {
	t.Helper()
	var b strings.Builder
	for _, name := range completed {
		b.WriteString(name + " = true\n")
	}
	WriteFile(t, dir, ".rust-journey-status", b.String())
}

// AssertFilePermissions checks the permission bits of path.
func AssertFilePermissions(t *testing.T, path string, expectedMode os.FileMode) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)

	actualMode := info.Mode()
	require.Equal(t, expectedMode, actualMode&os.FileMode(0o777),
		"File %s has incorrect permissions: got %o, want %o",
		path, actualMode&os.FileMode(0o777), expectedMode)
}
