// Package verify runs the external toolchain against one exercise file and
// classifies the result as passed or not passed.
//
// A toolchain that runs and rejects the exercise is a verification failure,
// reported through Outcome. Only environment problems (missing file, missing
// compiler, timeout) are returned as errors.
package verify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	jerrors "github.com/conneroisu/journey/internal/errors"
	"github.com/conneroisu/journey/internal/exercise"
	"github.com/conneroisu/journey/internal/logging"
	"github.com/conneroisu/journey/internal/validation"
)

// DefaultTimeout bounds a single verification, compile and test run included.
const DefaultTimeout = 2 * time.Minute

// Toolchain describes the compiler invocation.
type Toolchain struct {
	Compiler  string
	Edition   string
	ExtraArgs []string
}

// DefaultToolchain returns rustc with the 2021 edition.
func DefaultToolchain() Toolchain {
	return Toolchain{
		Compiler: "rustc",
		Edition:  "2021",
	}
}

// Validate rejects compiler names and arguments carrying shell metacharacters.
func (tc Toolchain) Validate() error {
	if err := validation.ValidateCommand(tc.Compiler, nil); err != nil {
		return err
	}
	if err := validation.ValidateArgument(tc.Edition); err != nil {
		return fmt.Errorf("invalid edition '%s': %w", tc.Edition, err)
	}
	for _, arg := range tc.ExtraArgs {
		if err := validation.ValidateArgument(arg); err != nil {
			return fmt.Errorf("invalid argument '%s': %w", arg, err)
		}
	}
	return nil
}

func (tc Toolchain) baseArgs() []string {
	args := make([]string, 0, len(tc.ExtraArgs)+1)
	if tc.Edition != "" {
		args = append(args, "--edition="+tc.Edition)
	}
	return append(args, tc.ExtraArgs...)
}

// Outcome is the result of one verification run.
type Outcome struct {
	Passed bool
	// Diagnostic is the raw toolchain output of the failing step.
	Diagnostic  string
	Diagnostics []*jerrors.Diagnostic
	Duration    time.Duration
}

// Verifier compiles, and for test exercises runs, one exercise at a time.
type Verifier struct {
	toolchain Toolchain
	timeout   time.Duration
	tempDir   string
	logger    logging.Logger
	parser    *jerrors.DiagnosticParser
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithTimeout bounds each verification. Zero or negative disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(v *Verifier) { v.timeout = d }
}

// WithTempDir sets the directory that receives build artifacts.
func WithTempDir(dir string) Option {
	return func(v *Verifier) { v.tempDir = dir }
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(v *Verifier) { v.logger = logger }
}

// New creates a verifier for the given toolchain.
func New(toolchain Toolchain, opts ...Option) *Verifier {
	v := &Verifier{
		toolchain: toolchain,
		timeout:   DefaultTimeout,
		logger:    logging.NewNopLogger(),
		parser:    jerrors.NewDiagnosticParser(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.WithComponent("verify")
	return v
}

// Verify checks ex against the toolchain. The exercise is never modified.
func (v *Verifier) Verify(ctx context.Context, ex *exercise.Exercise, basePath string) (Outcome, error) {
	start := time.Now()

	path, err := v.resolve(ex, basePath)
	if err != nil {
		return Outcome{}, err
	}

	if err := v.toolchain.Validate(); err != nil {
		return Outcome{}, jerrors.NewConfigError(jerrors.CodeInvalidConfig,
			"toolchain validation failed", err).WithExercise(ex.Name)
	}

	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	logger := v.logger.With("exercise", ex.Name, "mode", ex.Mode.String())
	logger.Debug(ctx, "verifying", "path", path)

	var outcome Outcome
	switch ex.Mode {
	case exercise.ModeTest:
		outcome, err = v.verifyTest(ctx, logger, ex, path, basePath)
	default:
		outcome, err = v.verifyCompile(ctx, logger, ex, path, basePath)
	}
	if err != nil {
		return Outcome{}, err
	}

	outcome.Duration = time.Since(start)
	if !outcome.Passed {
		outcome.Diagnostics = v.parser.Parse(outcome.Diagnostic)
	}
	logger.Debug(ctx, "verified", "passed", outcome.Passed, "duration", outcome.Duration)

	return outcome, nil
}

func (v *Verifier) resolve(ex *exercise.Exercise, basePath string) (string, error) {
	path, err := validation.ResolveExercisePath(basePath, ex.Path)
	if err != nil {
		return "", jerrors.NewValidationError(jerrors.CodeInvalidPath, err.Error()).
			WithExercise(ex.Name).WithPath(ex.Path)
	}

	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", jerrors.NewIOError(jerrors.CodeFileMissing, "exercise file not found", err).
			WithExercise(ex.Name).WithPath(path)
	}
	if !info.Mode().IsRegular() {
		return "", jerrors.NewIOError(jerrors.CodeFileMissing, "exercise path is not a regular file", nil).
			WithExercise(ex.Name).WithPath(path)
	}

	return path, nil
}

// verifyCompile builds the file and discards the artifact.
func (v *Verifier) verifyCompile(ctx context.Context, logger logging.Logger, ex *exercise.Exercise, path, dir string) (Outcome, error) {
	artifact := v.artifactPath("journey-build-")
	defer v.removeArtifact(ctx, logger, artifact)

	args := append(v.toolchain.baseArgs(), path, "-o", artifact)
	res, err := v.run(ctx, ex, dir, v.toolchain.Compiler, args...)
	if err != nil {
		return Outcome{}, err
	}

	if res.exited {
		diagnostic := res.stderr
		if strings.TrimSpace(diagnostic) == "" {
			diagnostic = res.combined
		}
		return Outcome{Diagnostic: diagnostic}, nil
	}
	return Outcome{Passed: true}, nil
}

// verifyTest builds the file as a test binary, runs it and removes it.
func (v *Verifier) verifyTest(ctx context.Context, logger logging.Logger, ex *exercise.Exercise, path, dir string) (Outcome, error) {
	binary := v.artifactPath("journey-test-")
	defer v.removeArtifact(ctx, logger, binary)

	args := append(v.toolchain.baseArgs(), "--test", path, "-o", binary)
	res, err := v.run(ctx, ex, dir, v.toolchain.Compiler, args...)
	if err != nil {
		return Outcome{}, err
	}
	if res.exited {
		return Outcome{Diagnostic: res.combined}, nil
	}

	res, err = v.run(ctx, ex, dir, binary)
	if err != nil {
		return Outcome{}, err
	}
	if res.exited {
		return Outcome{Diagnostic: res.combined}, nil
	}
	return Outcome{Passed: true}, nil
}

func (v *Verifier) artifactPath(prefix string) string {
	dir := v.tempDir
	if dir == "" {
		dir = os.TempDir()
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return filepath.Join(dir, prefix+uuid.NewString())
}

// removeArtifact deletes a build output. Failures are logged and dropped.
func (v *Verifier) removeArtifact(ctx context.Context, logger logging.Logger, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn(ctx, err, "failed to remove temporary artifact", "path", path)
	}
}

type runResult struct {
	// exited is set when the process ran and returned a non-zero status.
	exited   bool
	stderr   string
	combined string
}

// run executes a command and separates "ran and failed" from "could not run".
func (v *Verifier) run(ctx context.Context, ex *exercise.Exercise, dir, command string, args ...string) (runResult, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = dir

	var combined lockedBuffer
	var stderr bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = io.MultiWriter(&combined, &stderr)

	err := cmd.Run()
	res := runResult{stderr: stderr.String(), combined: combined.String()}
	if err == nil {
		return res, nil
	}

	if ctx.Err() != nil {
		return res, jerrors.NewToolchainError(jerrors.CodeToolchainTimeout,
			fmt.Sprintf("%s did not finish", filepath.Base(command)), ctx.Err()).WithExercise(ex.Name)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.exited = true
		return res, nil
	}

	return res, jerrors.NewToolchainError(jerrors.CodeToolchainSpawn,
		fmt.Sprintf("failed to start %s", command), err).WithExercise(ex.Name)
}

// lockedBuffer is shared by the stdout and stderr copy goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
