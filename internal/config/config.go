package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/devup/internal/model"
)

// DefaultPython is the Python version requested when the configuration
// does not specify one. uv downloads this version on demand if no matching
// interpreter is installed.
const DefaultPython = "3.12"

// DefaultVenvDir is the virtual environment directory relative to the
// repository root.
const DefaultVenvDir = ".venv"

// FileNames lists the configuration file candidates at the repository root,
// in priority order. The first one found wins; the rest are ignored.
var FileNames = []string{"devup.jsonc", "devup.yaml"}

// Config is the fully resolved devup configuration for one repository.
//
// A configuration file replaces the defaults wholesale — there is no
// per-field merging. This keeps the installed set auditable: what you see
// in the file (or in DefaultConfig when no file exists) is exactly what
// gets installed, in that order.
type Config struct {
	// Python is the interpreter version the virtual environment is pinned to.
	Python string `json:"python,omitempty" yaml:"python,omitempty"`

	// Venv is the virtual environment directory relative to the repository
	// root. Kept relative so the same configuration works inside a
	// provisioning container where the root is mounted at a different path.
	Venv string `json:"venv,omitempty" yaml:"venv,omitempty"`

	// Subprojects lists the locally developed sub-projects in install order.
	// Each gets its base manifest installed first, then an editable install
	// with its extras group.
	Subprojects []model.Subproject `json:"subprojects" yaml:"subprojects"`

	// Packages is the fixed table of additional packages, installed in
	// order after the first sub-project's editable install. Some entries
	// carry exact pins; the mix of pinned and unpinned entries is
	// preserved exactly as written.
	Packages []model.PackageSpec `json:"packages" yaml:"packages"`
}

// DefaultConfig returns the built-in configuration used when no devup
// configuration file exists at the repository root. It matches the standard
// two-sub-project monorepo layout: the core library with its tests extras,
// and the infra library with its dev extras.
func DefaultConfig() *Config {
	return &Config{
		Python: DefaultPython,
		Venv:   DefaultVenvDir,
		Subprojects: []model.Subproject{
			{Path: "libs/agno", Manifest: "requirements.txt", Extras: []string{"tests"}},
			{Path: "libs/agno_infra", Manifest: "requirements.txt", Extras: []string{"dev"}},
		},
		Packages: []model.PackageSpec{
			{Name: "mypy", Version: "1.11.2"},
			{Name: "ruff", Version: "0.6.5"},
			{Name: "pytest"},
			{Name: "pytest-asyncio"},
			{Name: "fastapi", Extras: []string{"standard"}},
			{Name: "openai"},
		},
	}
}

// Load reads the devup configuration for the repository rooted at root.
//
// Search order: devup.jsonc, then devup.yaml. A missing file is not an
// error — the built-in defaults apply. A present-but-invalid file IS an
// error, because silently falling back to defaults would install a
// different package set than the one the user wrote down.
func Load(root string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(root, name)

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, model.WrapCLIError(model.ExitConfigError,
				fmt.Sprintf("failed to read %s", path), err)
		}

		cfg, err := parse(name, data)
		if err != nil {
			return nil, model.WrapCLIError(model.ExitConfigError,
				fmt.Sprintf("invalid configuration in %s", path), err)
		}

		cfg.applyDefaults()
		if err := cfg.Validate(); err != nil {
			return nil, model.WrapCLIError(model.ExitConfigError,
				fmt.Sprintf("invalid configuration in %s", path), err)
		}
		return cfg, nil
	}

	return DefaultConfig(), nil
}

// parse decodes the raw file contents according to the file extension.
// The .jsonc form is stripped of comments and trailing commas first, then
// parsed with the standard encoding/json — the same approach used for
// devcontainer.json files, which share the JSONC convention.
func parse(name string, data []byte) (*Config, error) {
	var cfg Config

	switch filepath.Ext(name) {
	case ".jsonc", ".json":
		if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSONC: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported configuration format %q", name)
	}

	return &cfg, nil
}

// applyDefaults fills the optional scalar fields. Subprojects and Packages
// are deliberately NOT defaulted here: a file that declares them empty
// means "install nothing extra", which Validate then rejects or allows
// as appropriate.
func (c *Config) applyDefaults() {
	if c.Python == "" {
		c.Python = DefaultPython
	}
	if c.Venv == "" {
		c.Venv = DefaultVenvDir
	}
}

// Validate checks the configuration for mistakes that would otherwise
// surface as confusing package-manager errors mid-run.
func (c *Config) Validate() error {
	if len(c.Subprojects) == 0 {
		return fmt.Errorf("at least one subproject is required")
	}

	seenPaths := make(map[string]bool)
	for _, sp := range c.Subprojects {
		if err := sp.Validate(); err != nil {
			return err
		}
		if seenPaths[sp.Path] {
			return fmt.Errorf("duplicate subproject path %q", sp.Path)
		}
		seenPaths[sp.Path] = true
	}

	// Duplicate names in the package table would make the later entry
	// silently win during resolution, defeating the audit trail.
	seenPkgs := make(map[string]bool)
	for _, pkg := range c.Packages {
		if err := pkg.Validate(); err != nil {
			return err
		}
		if seenPkgs[pkg.Name] {
			return fmt.Errorf("duplicate package %q in package table", pkg.Name)
		}
		seenPkgs[pkg.Name] = true
	}

	if filepath.IsAbs(c.Venv) {
		return fmt.Errorf("venv path %q must be relative to the repository root", c.Venv)
	}

	return nil
}
