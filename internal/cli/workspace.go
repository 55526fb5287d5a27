// Package cli — workspace.go holds the shared setup every subcommand
// performs before doing its work: locating the repository root, loading
// the devup configuration, and sourcing the repository's .env file.
package cli

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/mmr-tortoise/devup/internal/config"
	"github.com/mmr-tortoise/devup/internal/model"
	"github.com/mmr-tortoise/devup/internal/project"
)

// workspace bundles the resolved repository root with its configuration.
type workspace struct {
	// Root is the absolute repository root.
	Root string

	// Config is the loaded (or default) devup configuration.
	Config *config.Config
}

// loadWorkspace resolves the repository root — from the --root flag when
// given, otherwise by walking up from the current directory — and loads
// the configuration.
//
// If a .env file exists at the root it is loaded into the process
// environment before anything else runs, so index credentials and other
// settings (UV_INDEX_URL, UV_EXTRA_INDEX_URL, ...) reach every uv
// invocation through normal environment inheritance. Existing process
// variables win over .env values, which is godotenv.Load semantics.
func loadWorkspace(rootFlag string) (*workspace, error) {
	var root string
	var err error

	if rootFlag != "" {
		root, err = filepath.Abs(rootFlag)
		if err != nil {
			return nil, model.WrapCLIError(model.ExitConfigError,
				"failed to resolve --root", err)
		}
		if _, statErr := os.Stat(root); statErr != nil {
			return nil, model.WrapCLIError(model.ExitConfigError,
				"--root does not exist", statErr)
		}
	} else {
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			return nil, model.WrapCLIError(model.ExitGeneralError,
				"failed to get current directory", cwdErr)
		}
		root, err = project.FindRoot(cwd)
		if err != nil {
			return nil, err
		}
	}
	VerboseLog("Repository root: %s", root)

	envFile := filepath.Join(root, ".env")
	if _, statErr := os.Stat(envFile); statErr == nil {
		if loadErr := godotenv.Load(envFile); loadErr != nil {
			return nil, model.WrapCLIError(model.ExitConfigError,
				"failed to load .env", loadErr)
		}
		VerboseLog("Loaded environment from %s", envFile)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	return &workspace{Root: root, Config: cfg}, nil
}
