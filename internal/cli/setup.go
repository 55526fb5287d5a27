// Package cli — setup.go implements the "devup setup" command.
//
// setup is the primary operation: it recreates the virtual environment
// and installs everything the configuration names, in a fixed sequence.
// With --container the same sequence runs inside a disposable Docker
// container that ships uv, with the repository bind-mounted.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/devup/internal/docker"
	"github.com/mmr-tortoise/devup/internal/uv"
	"github.com/mmr-tortoise/devup/internal/venv"
)

// setupFlags holds the flag values for the setup command.
type setupFlags struct {
	root      string // --root: explicit repository root
	python    string // --python: override the configured Python version
	keepVenv  bool   // --keep-venv: install into the existing environment
	container bool   // --container: provision inside a Docker container
	image     string // --image: container image for --container
}

// NewSetupCommand creates the "setup" cobra command.
func NewSetupCommand() *cobra.Command {
	flags := &setupFlags{}

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Recreate the virtual environment and install all dependencies",
		Long: `Recreate the development virtual environment from scratch.

The provisioning sequence is fixed: remove the existing environment,
create a fresh one pinned to the configured Python version, install each
sub-project's base requirements and the sub-project itself in editable
mode with its extras group, and install the fixed table of additional
packages. The run ends with the installed package list and the
activation instruction.

Examples:
  devup setup
  devup setup --python 3.13
  devup setup --keep-venv
  devup setup --container`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.root, "root", "", "Repository root (default: discovered from the current directory)")
	cmd.Flags().StringVar(&flags.python, "python", "", "Python version for the environment (default: from configuration)")
	cmd.Flags().BoolVar(&flags.keepVenv, "keep-venv", false, "Install into the existing environment instead of recreating it")
	cmd.Flags().BoolVar(&flags.container, "container", false, "Run the provisioning sequence inside a Docker container")
	cmd.Flags().StringVar(&flags.image, "image", docker.DefaultImage, "Container image for --container")

	return cmd
}

// runSetup is the orchestration function for the setup command.
func runSetup(ctx context.Context, flags *setupFlags) error {
	ws, err := loadWorkspace(flags.root)
	if err != nil {
		return err
	}

	if flags.python != "" {
		ws.Config.Python = flags.python
	}

	// In JSON mode the progress stream moves to stderr so stdout carries
	// only the final machine-readable summary.
	var progress io.Writer = os.Stdout
	if IsJSONOutput() {
		progress = os.Stderr
	}

	runner, cleanup, err := buildRunner(ctx, ws.Root, flags)
	if err != nil {
		return err
	}
	defer cleanup()

	p := venv.New(ws.Root, ws.Config, runner, progress)
	p.KeepVenv = flags.keepVenv

	if err := p.Provision(ctx); err != nil {
		return err
	}

	if IsJSONOutput() {
		printSetupResultJSON(ws, flags)
	}
	return nil
}

// buildRunner selects the uv runner for this run: the host binary by
// default, or an exec runner bound to a freshly started sandbox container
// with --container. The returned cleanup tears the sandbox down and is a
// no-op for the host runner.
func buildRunner(ctx context.Context, root string, flags *setupFlags) (uv.Runner, func(), error) {
	if !flags.container {
		runner, err := uv.NewRunner()
		if err != nil {
			return nil, nil, err
		}
		return runner, func() {}, nil
	}

	cli, err := docker.NewClient()
	if err != nil {
		return nil, nil, err
	}
	if err := cli.Ping(ctx); err != nil {
		_ = cli.Close()
		return nil, nil, err
	}
	VerboseLog("Connected to Docker daemon")

	containerID, err := docker.StartSandbox(ctx, root, flags.image)
	if err != nil {
		_ = cli.Close()
		return nil, nil, err
	}
	VerboseLog("Started provisioning container %s", containerID)

	cleanup := func() {
		// Teardown uses a fresh context: the run's context may already be
		// cancelled, and a stopped-and-removed container must not be
		// leaked because of that.
		if stopErr := docker.StopSandbox(context.Background(), cli, containerID); stopErr != nil {
			VerboseLog("Warning: failed to stop container %s: %v", containerID, stopErr)
		}
		_ = cli.Close()
	}

	return &docker.ContainerRunner{ContainerID: containerID}, cleanup, nil
}

// printSetupResultJSON emits the machine-readable success summary.
func printSetupResultJSON(ws *workspace, flags *setupFlags) {
	result := struct {
		Root        string `json:"root"`
		Venv        string `json:"venv"`
		Python      string `json:"python"`
		Subprojects int    `json:"subprojects"`
		Packages    int    `json:"packages"`
		Container   bool   `json:"container"`
	}{
		Root:        ws.Root,
		Venv:        ws.Config.Venv,
		Python:      ws.Config.Python,
		Subprojects: len(ws.Config.Subprojects),
		Packages:    len(ws.Config.Packages),
		Container:   flags.container,
	}

	data, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(data))
}
