// Package cli — list.go implements the "devup list" command.
//
// list shows what is currently installed in the virtual environment by
// delegating to "uv pip list". With --json, uv's own JSON format is
// passed through unchanged, so consumers get the package manager's
// canonical output rather than a re-serialization of it.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/devup/internal/model"
	"github.com/mmr-tortoise/devup/internal/uv"
)

// listFlags holds the flag values for the list command.
type listFlags struct {
	root string // --root: explicit repository root
}

// NewListCommand creates the "list" cobra command.
func NewListCommand() *cobra.Command {
	flags := &listFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List packages installed in the virtual environment",
		Long: `List all packages installed in the virtual environment.

Examples:
  devup list
  devup list --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.root, "root", "", "Repository root (default: discovered from the current directory)")

	return cmd
}

// runList invokes uv pip list against the existing environment.
func runList(ctx context.Context, flags *listFlags) error {
	ws, err := loadWorkspace(flags.root)
	if err != nil {
		return err
	}

	venvPath := filepath.Join(ws.Root, filepath.FromSlash(ws.Config.Venv))
	if _, statErr := os.Stat(venvPath); os.IsNotExist(statErr) {
		return model.NewCLIError(model.ExitEnvCreationFailed,
			fmt.Sprintf("no virtual environment at %s — run \"devup setup\" first", ws.Config.Venv))
	}

	runner, err := uv.NewRunner()
	if err != nil {
		return err
	}

	args := []string{"pip", "list"}
	if IsJSONOutput() {
		args = append(args, "--format", "json")
	}

	out, err := runner.Run(ctx, ws.Root, map[string]string{"VIRTUAL_ENV": ws.Config.Venv}, args...)
	if err != nil {
		return model.WrapCLIError(model.ExitDependencyFailed,
			"failed to list installed packages", err)
	}

	fmt.Print(out)
	return nil
}
