package verify

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/journey/internal/errors"
	"github.com/conneroisu/journey/internal/exercise"
	"github.com/conneroisu/journey/internal/testutils"
)

type fixture struct {
	base     string
	artifact string
	verifier *Verifier
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	tc := DefaultToolchain()
	tc.Compiler = testutils.WriteFakeCompiler(t)

	base := t.TempDir()
	artifact := t.TempDir()

	opts = append([]Option{WithTempDir(artifact)}, opts...)
	return &fixture{
		base:     base,
		artifact: artifact,
		verifier: New(tc, opts...),
	}
}

func (f *fixture) write(t *testing.T, rel, content string) {
	t.Helper()
	testutils.WriteFile(t, f.base, rel, content)
}

func (f *fixture) assertNoArtifacts(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(f.artifact)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary build outputs must be removed")
}

func TestVerifyCompileMode(t *testing.T) {
	f := newFixture(t)
	ex := &exercise.Exercise{Name: "e1", Path: "a.rs", Mode: exercise.ModeCompile}

	f.write(t, "a.rs", "fn main() { COMPILE_ERROR }\n")
	outcome, err := f.verifier.Verify(context.Background(), ex, f.base)
	require.NoError(t, err)
	assert.False(t, outcome.Passed)
	assert.Contains(t, outcome.Diagnostic, "cannot find value")

	first := errors.First(outcome.Diagnostics)
	require.NotNil(t, first)
	assert.Equal(t, "E0425", first.Code)
	assert.Equal(t, 3, first.Line)
	f.assertNoArtifacts(t)

	f.write(t, "a.rs", "fn main() {}\n")
	outcome, err = f.verifier.Verify(context.Background(), ex, f.base)
	require.NoError(t, err)
	assert.True(t, outcome.Passed)
	assert.Empty(t, outcome.Diagnostic)
	assert.False(t, ex.Completed, "verify must not mutate the exercise")
	f.assertNoArtifacts(t)
}

func TestVerifyTestMode(t *testing.T) {
	f := newFixture(t)
	ex := &exercise.Exercise{Name: "t1", Path: "tests/t1.rs", Mode: exercise.ModeTest}

	t.Run("panicking test", func(t *testing.T) {
		f.write(t, "tests/t1.rs", "#[test] fn it_works() { PANIC }\n")
		outcome, err := f.verifier.Verify(context.Background(), ex, f.base)
		require.NoError(t, err)
		assert.False(t, outcome.Passed)
		assert.Contains(t, outcome.Diagnostic, "FAILED", "stdout of the test binary")
		assert.Contains(t, outcome.Diagnostic, "panicked", "stderr of the test binary")
		f.assertNoArtifacts(t)
	})

	t.Run("compile failure", func(t *testing.T) {
		f.write(t, "tests/t1.rs", "COMPILE_ERROR\n")
		outcome, err := f.verifier.Verify(context.Background(), ex, f.base)
		require.NoError(t, err)
		assert.False(t, outcome.Passed)
		assert.Contains(t, outcome.Diagnostic, "E0425")
		f.assertNoArtifacts(t)
	})

	t.Run("passing test", func(t *testing.T) {
		f.write(t, "tests/t1.rs", "#[test] fn it_works() {}\n")
		outcome, err := f.verifier.Verify(context.Background(), ex, f.base)
		require.NoError(t, err)
		assert.True(t, outcome.Passed)
		f.assertNoArtifacts(t)
	})
}

func TestVerifyMissingFile(t *testing.T) {
	f := newFixture(t)
	ex := &exercise.Exercise{Name: "gone", Path: "missing.rs"}

	_, err := f.verifier.Verify(context.Background(), ex, f.base)
	require.Error(t, err)
	assert.True(t, errors.IsIOError(err))
	assert.Contains(t, err.Error(), "missing.rs")
	assert.Contains(t, err.Error(), "gone")
}

func TestVerifyDirectoryIsNotAnExercise(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Mkdir(filepath.Join(f.base, "dir.rs"), 0o755))

	_, err := f.verifier.Verify(context.Background(), &exercise.Exercise{Name: "d", Path: "dir.rs"}, f.base)
	require.Error(t, err)
	assert.True(t, errors.IsIOError(err))
}

func TestVerifyRejectsEscapingPath(t *testing.T) {
	f := newFixture(t)

	_, err := f.verifier.Verify(context.Background(), &exercise.Exercise{Name: "x", Path: "../x.rs"}, f.base)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.NewValidationError(errors.CodeInvalidPath, ""))
}

func TestVerifyMissingToolchain(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "a.rs"), []byte("fn main() {}\n"), 0o644))

	v := New(Toolchain{Compiler: "journey-no-such-compiler", Edition: "2021"}, WithTempDir(t.TempDir()))
	outcome, err := v.Verify(context.Background(), &exercise.Exercise{Name: "e1", Path: "a.rs"}, base)
	require.Error(t, err)
	assert.True(t, errors.IsToolchainError(err))
	assert.False(t, outcome.Passed)
}

func TestVerifyRejectsUnsafeToolchain(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "a.rs"), []byte("fn main() {}\n"), 0o644))

	v := New(Toolchain{Compiler: "rustc", ExtraArgs: []string{"-O; rm -rf /"}})
	_, err := v.Verify(context.Background(), &exercise.Exercise{Name: "e1", Path: "a.rs"}, base)
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}

func TestVerifyTimeout(t *testing.T) {
	f := newFixture(t, WithTimeout(100*time.Millisecond))
	f.write(t, "slow.rs", "SLOW\n")

	_, err := f.verifier.Verify(context.Background(), &exercise.Exercise{Name: "slow", Path: "slow.rs"}, f.base)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.NewToolchainError(errors.CodeToolchainTimeout, "", nil))
	f.assertNoArtifacts(t)
}

func TestToolchainBaseArgs(t *testing.T) {
	tc := Toolchain{Compiler: "rustc", Edition: "2018", ExtraArgs: []string{"-Cdebuginfo=0"}}
	assert.Equal(t, []string{"--edition=2018", "-Cdebuginfo=0"}, tc.baseArgs())

	tc.Edition = ""
	assert.Equal(t, []string{"-Cdebuginfo=0"}, tc.baseArgs())
}
