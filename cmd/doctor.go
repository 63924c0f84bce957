package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/journey/internal/config"
	"github.com/conneroisu/journey/internal/exercise"
	"github.com/conneroisu/journey/internal/status"
	"github.com/conneroisu/journey/internal/validation"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the project and toolchain are ready",
	Long: `Diagnose the setup journey depends on:

- Configuration loads and validates
- The exercise registry is present and well formed
- The compiler is installed and runs
- Every exercise file listed in the registry exists
- The status file is readable and its directory writable

Examples:
  journey doctor                  # Human-readable report
  journey doctor -o json          # Report as JSON for tooling`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

var doctorFlags *OutputFlags

// Check statuses.
const (
	statusOK      = "ok"
	statusWarning = "warning"
	statusError   = "error"
)

// DiagnosticResult represents the result of a diagnostic check
type DiagnosticResult struct {
	Name       string                 `json:"name" yaml:"name"`
	Status     string                 `json:"status" yaml:"status"`
	Message    string                 `json:"message" yaml:"message"`
	Suggestion string                 `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty" yaml:"details,omitempty"`
}

// DoctorReport represents the complete diagnostic report
type DoctorReport struct {
	Timestamp   time.Time          `json:"timestamp" yaml:"timestamp"`
	Environment map[string]string  `json:"environment" yaml:"environment"`
	Results     []DiagnosticResult `json:"results" yaml:"results"`
	Summary     ReportSummary      `json:"summary" yaml:"summary"`
}

// ReportSummary provides an overview of diagnostic results
type ReportSummary struct {
	Total    int `json:"total" yaml:"total"`
	OK       int `json:"ok" yaml:"ok"`
	Warnings int `json:"warnings" yaml:"warnings"`
	Errors   int `json:"errors" yaml:"errors"`
}

// doctorState carries what earlier checks learned to later ones.
type doctorState struct {
	cfg *config.Config
	set *exercise.Set
}

type doctorCheck func(ctx context.Context, st *doctorState) DiagnosticResult

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorFlags = AddOutputFlag(doctorCmd, formatTable, formatJSON, formatYAML)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	report := &DoctorReport{
		Timestamp:   time.Now(),
		Environment: gatherEnvironmentInfo(),
	}

	st := &doctorState{}
	checks := []doctorCheck{
		checkConfiguration,
		checkRegistry,
		checkToolchain,
		checkExerciseFiles,
		checkStatusFile,
	}
	for _, check := range checks {
		report.Results = append(report.Results, check(ctx, st))
	}
	report.Summary = calculateSummary(report.Results)

	out := cmd.OutOrStdout()
	encoded, err := doctorFlags.Encode(out, report)
	if err != nil {
		return err
	}
	if !encoded {
		displayReport(out, report)
	}

	if report.Summary.Errors > 0 {
		return fmt.Errorf("%d of %d checks failed", report.Summary.Errors, report.Summary.Total)
	}
	return nil
}

func gatherEnvironmentInfo() map[string]string {
	wd, err := os.Getwd()
	if err != nil {
		wd = "unknown"
	}
	return map[string]string{
		"os":          runtime.GOOS,
		"arch":        runtime.GOARCH,
		"go_version":  runtime.Version(),
		"working_dir": wd,
	}
}

func checkConfiguration(_ context.Context, st *doctorState) DiagnosticResult {
	result := DiagnosticResult{Name: "Configuration", Status: statusOK}

	cfg, err := config.Load()
	if err != nil {
		result.Status = statusError
		result.Message = err.Error()
		result.Suggestion = "Fix the values in .journey.yml or the JOURNEY_ environment variables"
		return result
	}
	st.cfg = cfg

	result.Message = "Configuration is valid"
	result.Details = map[string]interface{}{
		"registry":    cfg.RegistryPath(),
		"status_file": cfg.StatusPath(),
		"compiler":    cfg.Toolchain.Compiler,
	}
	return result
}

func checkRegistry(_ context.Context, st *doctorState) DiagnosticResult {
	result := DiagnosticResult{Name: "Exercise registry", Status: statusOK}
	if st.cfg == nil {
		return skipped(result, "configuration")
	}

	set, err := exercise.Load(st.cfg.RegistryPath())
	if err != nil {
		result.Status = statusError
		result.Message = err.Error()
		result.Suggestion = "Run journey from the project root or set --base-path"
		return result
	}
	st.set = set

	result.Message = fmt.Sprintf("%d exercises registered", set.Len())
	return result
}

func checkToolchain(ctx context.Context, st *doctorState) DiagnosticResult {
	result := DiagnosticResult{Name: "Toolchain", Status: statusOK}
	if st.cfg == nil {
		return skipped(result, "configuration")
	}

	compiler := st.cfg.Toolchain.Compiler
	if err := validation.ValidateCommand(compiler, nil); err != nil {
		result.Status = statusError
		result.Message = err.Error()
		return result
	}

	path, err := exec.LookPath(compiler)
	if err != nil {
		result.Status = statusError
		result.Message = fmt.Sprintf("%s not found on PATH", compiler)
		result.Suggestion = "Install the toolchain or point toolchain.compiler at it"
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	output, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		result.Status = statusWarning
		result.Message = fmt.Sprintf("%s found but --version failed: %v", compiler, err)
		result.Details = map[string]interface{}{"path": path}
		return result
	}

	version := strings.TrimSpace(string(output))
	result.Message = version
	result.Details = map[string]interface{}{"path": path, "version": version}
	return result
}

func checkExerciseFiles(_ context.Context, st *doctorState) DiagnosticResult {
	result := DiagnosticResult{Name: "Exercise files", Status: statusOK}
	if st.set == nil {
		return skipped(result, "registry")
	}

	var missing []string
	for _, ex := range st.set.All() {
		path, err := validation.ResolveExercisePath(st.cfg.BasePath, ex.Path)
		if err == nil {
			var info os.FileInfo
			if info, err = os.Stat(path); err == nil && !info.Mode().IsRegular() {
				err = fmt.Errorf("not a regular file")
			}
		}
		if err != nil {
			missing = append(missing, ex.Name)
		}
	}

	if len(missing) > 0 {
		result.Status = statusError
		result.Message = fmt.Sprintf("%d of %d exercise files are missing or invalid", len(missing), st.set.Len())
		result.Details = map[string]interface{}{"exercises": missing}
		result.Suggestion = "Restore the exercises from the course repository"
		return result
	}
	result.Message = fmt.Sprintf("All %d exercise files present", st.set.Len())
	return result
}

func checkStatusFile(_ context.Context, st *doctorState) DiagnosticResult {
	result := DiagnosticResult{Name: "Status file", Status: statusOK}
	if st.set == nil {
		return skipped(result, "registry")
	}

	path := st.cfg.StatusPath()
	if err := status.Load(path, st.set); err != nil {
		result.Status = statusError
		result.Message = err.Error()
		return result
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".journey-doctor-*")
	if err != nil {
		result.Status = statusError
		result.Message = fmt.Sprintf("cannot write to %s: %v", dir, err)
		result.Suggestion = "Progress cannot be saved; check directory permissions"
		return result
	}
	tmp.Close()
	os.Remove(tmp.Name())

	result.Message = fmt.Sprintf("%d/%d exercises completed", st.set.CompletedCount(), st.set.Len())
	return result
}

func skipped(result DiagnosticResult, dependency string) DiagnosticResult {
	result.Status = statusWarning
	result.Message = fmt.Sprintf("skipped: %s check failed", dependency)
	return result
}

func calculateSummary(results []DiagnosticResult) ReportSummary {
	summary := ReportSummary{Total: len(results)}
	for _, result := range results {
		switch result.Status {
		case statusOK:
			summary.OK++
		case statusWarning:
			summary.Warnings++
		case statusError:
			summary.Errors++
		}
	}
	return summary
}

func displayReport(out io.Writer, report *DoctorReport) {
	for _, result := range report.Results {
		icon := "✓"
		switch result.Status {
		case statusWarning:
			icon = "!"
		case statusError:
			icon = "✗"
		}
		fmt.Fprintf(out, "%s %s: %s\n", icon, result.Name, result.Message)
		if result.Suggestion != "" {
			fmt.Fprintf(out, "  %s\n", result.Suggestion)
		}
	}

	s := report.Summary
	fmt.Fprintf(out, "\n%d checks: %d ok, %d warnings, %d errors\n", s.Total, s.OK, s.Warnings, s.Errors)
}
