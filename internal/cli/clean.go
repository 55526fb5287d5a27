// Package cli — clean.go implements the "devup clean" command.
//
// clean removes the virtual environment directory and nothing else.
// It exists for the cases where a partially provisioned environment
// should be discarded without immediately re-provisioning.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/devup/internal/model"
)

// cleanFlags holds the flag values for the clean command.
type cleanFlags struct {
	root string // --root: explicit repository root
}

// NewCleanCommand creates the "clean" cobra command.
func NewCleanCommand() *cobra.Command {
	flags := &cleanFlags{}

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the virtual environment",
		Long: `Remove the virtual environment directory.

Removing an environment that does not exist is not an error — the
command is idempotent, matching the removal step of "devup setup".

Examples:
  devup clean`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(flags)
		},
	}

	cmd.Flags().StringVar(&flags.root, "root", "", "Repository root (default: discovered from the current directory)")

	return cmd
}

// runClean removes the environment directory.
func runClean(flags *cleanFlags) error {
	ws, err := loadWorkspace(flags.root)
	if err != nil {
		return err
	}

	venvPath := filepath.Join(ws.Root, filepath.FromSlash(ws.Config.Venv))

	if _, statErr := os.Stat(venvPath); os.IsNotExist(statErr) {
		fmt.Printf("No virtual environment at %s — nothing to remove.\n", ws.Config.Venv)
		return nil
	}

	if err := os.RemoveAll(venvPath); err != nil {
		return model.WrapCLIError(model.ExitFilesystemError,
			fmt.Sprintf("failed to remove %s", venvPath), err)
	}

	fmt.Printf("Removed %s\n", ws.Config.Venv)
	return nil
}
