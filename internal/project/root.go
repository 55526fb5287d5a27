package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mmr-tortoise/devup/internal/config"
	"github.com/mmr-tortoise/devup/internal/model"
)

// FindRoot walks up from startDir looking for the repository root.
//
// A directory qualifies as the root if it contains either:
//  1. a devup configuration file (devup.jsonc or devup.yaml), or
//  2. every sub-project directory of the default layout (libs/agno and
//     libs/agno_infra), for repositories that rely entirely on the
//     built-in defaults.
//
// The search stops at the filesystem root. Returns a CLIError with
// ExitConfigError when no qualifying directory is found, since every
// subsequent operation needs a root to work against.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("failed to resolve %q", startDir), err)
	}

	for {
		if isRoot(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached the filesystem root without finding a marker.
			break
		}
		dir = parent
	}

	return "", model.NewCLIError(model.ExitConfigError,
		fmt.Sprintf("no repository root found above %s (looked for %v or the default sub-project layout)",
			startDir, config.FileNames))
}

// isRoot reports whether dir qualifies as a repository root.
func isRoot(dir string) bool {
	// Marker 1: an explicit devup configuration file.
	for _, name := range config.FileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}

	// Marker 2: the default sub-project layout. All default sub-project
	// directories must be present — a single "libs" directory elsewhere
	// in the tree should not be mistaken for the root.
	for _, sp := range config.DefaultConfig().Subprojects {
		info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(sp.Path)))
		if err != nil || !info.IsDir() {
			return false
		}
	}
	return true
}
