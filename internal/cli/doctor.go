// Package cli — doctor.go implements the "devup doctor" command.
//
// doctor runs the preflight checks a provisioning run depends on — uv on
// PATH, the requested Python version obtainable, every dependency
// manifest present — and prints the effective package table with its
// pins, making the exact install set auditable before anything runs.
//
// Unlike setup, doctor does not stop at the first problem: it reports
// everything it finds and exits non-zero if any check failed.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/devup/internal/model"
	"github.com/mmr-tortoise/devup/internal/uv"
)

// doctorFlags holds the flag values for the doctor command.
type doctorFlags struct {
	root string // --root: explicit repository root
}

// NewDoctorCommand creates the "doctor" cobra command.
func NewDoctorCommand() *cobra.Command {
	flags := &doctorFlags{}

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check provisioning prerequisites",
		Long: `Check that everything a provisioning run needs is in place:
the uv binary, the requested Python version, and the dependency
manifests of every configured sub-project. Also prints the effective
package table so the exact install set is visible.

Examples:
  devup doctor`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.root, "root", "", "Repository root (default: discovered from the current directory)")

	return cmd
}

// runDoctor executes all checks and reports the results.
func runDoctor(ctx context.Context, flags *doctorFlags) error {
	ws, err := loadWorkspace(flags.root)
	if err != nil {
		return err
	}

	var problems []string
	report := func(ok bool, format string, args ...interface{}) {
		line := fmt.Sprintf(format, args...)
		if ok {
			fmt.Printf("  ok    %s\n", line)
		} else {
			fmt.Printf("  FAIL  %s\n", line)
			problems = append(problems, line)
		}
	}

	fmt.Printf("Repository root: %s\n\n", ws.Root)

	// Check 1: uv binary.
	runner, runnerErr := uv.NewRunner()
	if runnerErr != nil {
		report(false, "uv not found on PATH")
	} else {
		version, versionErr := runner.Version(ctx)
		if versionErr != nil {
			report(false, "uv found but not runnable: %v", versionErr)
		} else {
			report(true, "%s (%s)", version, runner.Bin)
		}
	}

	// Check 2: requested Python version. "uv python find" exits non-zero
	// when no matching interpreter is installed or downloadable.
	if runnerErr == nil {
		if _, findErr := runner.Run(ctx, ws.Root, nil, "python", "find", ws.Config.Python); findErr != nil {
			report(false, "Python %s not available to uv", ws.Config.Python)
		} else {
			report(true, "Python %s available", ws.Config.Python)
		}
	}

	// Check 3: dependency manifests of every sub-project.
	for _, sp := range ws.Config.Subprojects {
		manifest := sp.ManifestPath()
		if _, statErr := os.Stat(filepath.Join(ws.Root, filepath.FromSlash(manifest))); statErr != nil {
			report(false, "manifest missing: %s", manifest)
		} else {
			report(true, "manifest present: %s", manifest)
		}
	}

	// Informational: current environment state. Absence is not a failure —
	// setup creates it.
	venvPath := filepath.Join(ws.Root, filepath.FromSlash(ws.Config.Venv))
	if _, statErr := os.Stat(venvPath); statErr == nil {
		fmt.Printf("\nVirtual environment present at %s\n", ws.Config.Venv)
	} else {
		fmt.Printf("\nNo virtual environment at %s (run \"devup setup\")\n", ws.Config.Venv)
	}

	fmt.Printf("\nPackage table:\n%s", FormatPackageTable(ws.Config.Packages))

	if len(problems) > 0 {
		return model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("%d check(s) failed", len(problems)))
	}
	return nil
}

// FormatPackageTable renders the package table for diagnostic output,
// one requirement per line, marking pinned entries. The pinned/unpinned
// mix is shown exactly as configured — doctor never normalizes it.
//
// Exported for testing purposes (tested in doctor_test.go).
func FormatPackageTable(packages []model.PackageSpec) string {
	if len(packages) == 0 {
		return "  (empty)\n"
	}

	var b strings.Builder
	for _, pkg := range packages {
		marker := "        "
		if pkg.Version != "" {
			marker = "pinned  "
		}
		fmt.Fprintf(&b, "  %s%s\n", marker, pkg.Requirement())
	}
	return b.String()
}
