// Package model defines the domain types for the devup CLI.
//
// The entities here mirror the two inputs a provisioning run consumes:
// sub-project descriptors (a path plus a dependency manifest plus an
// extras group) and explicit package install directives (a name, an
// optional exact version pin, and optional extras). Both are rendered
// into requirement strings understood by the uv package manager.
package model

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// PackageSpec is a single install directive from the fixed package table.
// The zero value is invalid; Name must always be set.
//
// Rendering rules (see Requirement):
//
//	{Name: "pytest"}                                    → "pytest"
//	{Name: "mypy", Version: "1.11.2"}                   → "mypy==1.11.2"
//	{Name: "fastapi", Extras: []string{"standard"}}     → "fastapi[standard]"
type PackageSpec struct {
	// Name is the package name as known to the package index.
	Name string `json:"name" yaml:"name"`

	// Version is an optional exact version pin. When set, the requirement
	// uses the == operator — devup never emits range constraints, because
	// the package table is meant to be an auditable known-good set.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Extras lists optional dependency groups to request from the package.
	Extras []string `json:"extras,omitempty" yaml:"extras,omitempty"`
}

// packageNameRegex matches PEP 503 normalized-ish package names: letters,
// digits, and separators (-, _, .), starting and ending with alphanumeric.
var packageNameRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9._-]*[a-zA-Z0-9])?$`)

// Validate checks that the directive can be rendered into a requirement
// the package manager will accept.
func (p PackageSpec) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("package name must not be empty")
	}
	if !packageNameRegex.MatchString(p.Name) {
		return fmt.Errorf("invalid package name %q", p.Name)
	}
	for _, extra := range p.Extras {
		if extra == "" {
			return fmt.Errorf("package %q: extras must not contain empty strings", p.Name)
		}
	}
	return nil
}

// Requirement renders the directive as a PEP 508 requirement string
// suitable for passing to "uv pip install".
func (p PackageSpec) Requirement() string {
	var b strings.Builder
	b.WriteString(p.Name)
	if len(p.Extras) > 0 {
		b.WriteString("[")
		b.WriteString(strings.Join(p.Extras, ","))
		b.WriteString("]")
	}
	if p.Version != "" {
		b.WriteString("==")
		b.WriteString(p.Version)
	}
	return b.String()
}

// String returns the same rendering as Requirement. Satisfies fmt.Stringer
// so package tables print naturally in diagnostics.
func (p PackageSpec) String() string {
	return p.Requirement()
}

// Subproject describes one locally developed sub-project inside the
// repository: where it lives, which dependency manifest seeds its base
// requirements, and which extras group accompanies its editable install.
type Subproject struct {
	// Path is the sub-project directory, relative to the repository root
	// (slash-separated, e.g. "libs/agno").
	Path string `json:"path" yaml:"path"`

	// Manifest is the dependency manifest filename inside Path.
	// Defaults to "requirements.txt" when empty.
	Manifest string `json:"manifest,omitempty" yaml:"manifest,omitempty"`

	// Extras lists the extras groups requested with the editable install
	// (e.g. ["tests"] → "-e ./libs/agno[tests]").
	Extras []string `json:"extras,omitempty" yaml:"extras,omitempty"`
}

// Validate checks the sub-project descriptor for obvious misconfiguration.
// Filesystem existence is checked later, at provision time, so that
// validation stays pure and testable.
func (s Subproject) Validate() error {
	if s.Path == "" {
		return fmt.Errorf("subproject path must not be empty")
	}
	if path.IsAbs(s.Path) || strings.HasPrefix(s.Path, "..") {
		return fmt.Errorf("subproject path %q must be relative to the repository root", s.Path)
	}
	return nil
}

// ManifestPath returns the manifest location relative to the repository
// root. All provisioning commands run with the repository root as their
// working directory, so relative paths work both on the host and inside
// a provisioning container where the root is mounted elsewhere.
func (s Subproject) ManifestPath() string {
	manifest := s.Manifest
	if manifest == "" {
		manifest = "requirements.txt"
	}
	return path.Join(s.Path, manifest)
}

// EditableRequirement renders the "./path[extras]" argument used with
// "uv pip install -e". The leading "./" is required so the installer
// treats the argument as a local directory rather than a package name.
func (s Subproject) EditableRequirement() string {
	req := "./" + s.Path
	if len(s.Extras) > 0 {
		req += "[" + strings.Join(s.Extras, ",") + "]"
	}
	return req
}

// ExitCode defines the CLI exit codes. These codes let scripts and CI
// systems determine programmatically which class of failure aborted a
// provisioning run.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitConfigError indicates the repository root could not be located
	// or the devup configuration file is invalid.
	ExitConfigError ExitCode = 2

	// ExitUvNotFound indicates the uv binary is not on PATH.
	ExitUvNotFound ExitCode = 3

	// ExitEnvCreationFailed indicates the virtual environment could not
	// be created, most commonly because the requested Python version is
	// unavailable.
	ExitEnvCreationFailed ExitCode = 4

	// ExitDependencyFailed indicates a manifest or an explicit package
	// request could not be resolved or installed (missing package,
	// version conflict, unreachable index).
	ExitDependencyFailed ExitCode = 5

	// ExitFilesystemError indicates the environment directory could not
	// be removed or a required input file is missing.
	ExitFilesystemError ExitCode = 6

	// ExitDockerNotRunning indicates the Docker daemon is not accessible
	// (only relevant with --container).
	ExitDockerNotRunning ExitCode = 7
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
