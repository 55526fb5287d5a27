// Package config loads the devup configuration file.
//
// The configuration describes what a provisioning run installs: the target
// Python version, the virtual environment location, the sub-projects to
// install in editable mode, and the fixed table of additional packages.
//
// Two file formats are supported at the repository root, searched in order:
//
//	devup.jsonc  — JSON with comments (stripped via github.com/tidwall/jsonc)
//	devup.yaml   — plain YAML
//
// When neither file exists, built-in defaults matching the repository's
// standard layout are used, so a fresh checkout provisions without any
// configuration at all.
package config
