// Package cli implements the cobra-based CLI commands for devup.
//
// Each subcommand (setup, clean, list, doctor) is defined in its own file
// within this package. This file defines the root command that serves as
// the parent for all subcommands and handles global flags and error
// translation into process exit codes.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/devup/internal/model"
)

// Global flag variables shared across all subcommands. They are bound to
// cobra persistent flags on the root command, which makes them available
// to every subcommand automatically.
var (
	// jsonOutput controls whether command output is formatted as JSON
	// for machine consumption.
	jsonOutput bool

	// verbose enables detailed trace output on stderr.
	verbose bool
)

// Version, Commit, and Date are set at build time via ldflags.
// They are injected from the main package for --version output.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
//
// The root command itself performs no action — it provides help text and
// global flags. Functionality lives in the subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "devup",
		Short: "Development environment provisioner",
		Long: `devup provisions the local development environment for this repository.

It recreates an isolated virtual environment pinned to a specific Python
version and installs, via uv: each sub-project's base requirements, the
sub-projects themselves in editable mode with their extras groups, and a
fixed, auditable table of additional packages.

Run "devup setup" from anywhere inside the repository.`,

		// Error output is formatted centrally in Execute, so cobra's own
		// usage/error printing is silenced.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewSetupCommand())
	rootCmd.AddCommand(NewCleanCommand())
	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewDoctorCommand())

	return rootCmd
}

// Execute runs the root command and handles exit codes. CLIError values
// carry their own exit codes; other errors default to exit code 1.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		if cliErr, ok := err.(*model.CLIError); ok {
			printError(cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		printError(err.Error(), nil)
		os.Exit(int(model.ExitGeneralError))
	}
}

// printError outputs an error message in the appropriate format (JSON or
// text) based on the --json global flag. Errors always go to stderr, even
// in JSON mode, because stdout is reserved for successful command output.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		if underlying != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
	}
}

// VerboseLog prints a message to stderr only when verbose mode is enabled.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput returns whether the --json flag is set.
func IsJSONOutput() bool {
	return jsonOutput
}
