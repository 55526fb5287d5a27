// Package main is the entry point for the devup CLI.
//
// This binary provisions the local development environment for the
// repository: it recreates the virtual environment and installs the
// sub-projects and the fixed package table via uv. All functionality
// lives in the internal/cli package, which defines cobra commands.
package main

import (
	"github.com/mmr-tortoise/devup/internal/cli"
)

// version, commit, and date are set by GoReleaser at build time via
// ldflags. During development they default to "dev", "none", "unknown".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	rootCmd := cli.NewRootCommand()
	cli.Execute(rootCmd)
}
