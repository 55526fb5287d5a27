package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPackageSpec_Requirement verifies the rendering of install directives
// into requirement strings across all combinations of pin and extras.
func TestPackageSpec_Requirement(t *testing.T) {
	tests := []struct {
		name string
		spec PackageSpec
		want string
	}{
		{
			name: "name only",
			spec: PackageSpec{Name: "pytest"},
			want: "pytest",
		},
		{
			name: "exact pin",
			spec: PackageSpec{Name: "mypy", Version: "1.11.2"},
			want: "mypy==1.11.2",
		},
		{
			name: "single extra",
			spec: PackageSpec{Name: "fastapi", Extras: []string{"standard"}},
			want: "fastapi[standard]",
		},
		{
			name: "multiple extras",
			spec: PackageSpec{Name: "uvicorn", Extras: []string{"standard", "watch"}},
			want: "uvicorn[standard,watch]",
		},
		{
			name: "pin and extras combined",
			spec: PackageSpec{Name: "ruff", Version: "0.6.5", Extras: []string{"lsp"}},
			want: "ruff[lsp]==0.6.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.spec.Requirement())
			// String() must agree with Requirement() so diagnostic output
			// shows exactly what gets installed.
			assert.Equal(t, tt.want, tt.spec.String())
		})
	}
}

// TestPackageSpec_Validate verifies name validation. Names travel directly
// into package-manager arguments, so malformed names must be rejected
// before any process is spawned.
func TestPackageSpec_Validate(t *testing.T) {
	require.NoError(t, PackageSpec{Name: "pytest-asyncio"}.Validate())
	require.NoError(t, PackageSpec{Name: "types-requests"}.Validate())
	require.NoError(t, PackageSpec{Name: "a"}.Validate())

	assert.Error(t, PackageSpec{}.Validate(), "empty name should fail")
	assert.Error(t, PackageSpec{Name: "-leading-hyphen"}.Validate())
	assert.Error(t, PackageSpec{Name: "trailing-"}.Validate())
	assert.Error(t, PackageSpec{Name: "has space"}.Validate())
	assert.Error(t, PackageSpec{Name: "ok", Extras: []string{""}}.Validate(),
		"empty extra should fail")
}

// TestSubproject_ManifestPath verifies manifest path resolution, including
// the requirements.txt default.
func TestSubproject_ManifestPath(t *testing.T) {
	sp := Subproject{Path: "libs/agno"}
	assert.Equal(t, "libs/agno/requirements.txt", sp.ManifestPath(),
		"manifest should default to requirements.txt")

	sp = Subproject{Path: "libs/agno_infra", Manifest: "requirements/dev.txt"}
	assert.Equal(t, "libs/agno_infra/requirements/dev.txt", sp.ManifestPath())
}

// TestSubproject_EditableRequirement verifies the "-e" argument rendering.
// The leading "./" matters: without it the installer would treat the
// argument as a package name lookup against the index.
func TestSubproject_EditableRequirement(t *testing.T) {
	sp := Subproject{Path: "libs/agno", Extras: []string{"tests"}}
	assert.Equal(t, "./libs/agno[tests]", sp.EditableRequirement())

	sp = Subproject{Path: "libs/agno_infra", Extras: []string{"dev", "aws"}}
	assert.Equal(t, "./libs/agno_infra[dev,aws]", sp.EditableRequirement())

	sp = Subproject{Path: "libs/plain"}
	assert.Equal(t, "./libs/plain", sp.EditableRequirement())
}

// TestSubproject_Validate verifies that absolute and escaping paths are
// rejected — sub-projects must live under the repository root.
func TestSubproject_Validate(t *testing.T) {
	require.NoError(t, Subproject{Path: "libs/agno"}.Validate())

	assert.Error(t, Subproject{}.Validate())
	assert.Error(t, Subproject{Path: "/etc/passwd"}.Validate())
	assert.Error(t, Subproject{Path: "../outside"}.Validate())
}

// TestCLIError_ErrorAndUnwrap verifies the error formatting and that
// errors.Is can see through CLIError to the underlying cause.
func TestCLIError_ErrorAndUnwrap(t *testing.T) {
	underlying := errors.New("connection refused")

	wrapped := WrapCLIError(ExitDependencyFailed, "failed to reach package index", underlying)
	assert.Equal(t, "failed to reach package index: connection refused", wrapped.Error())
	assert.True(t, errors.Is(wrapped, underlying), "Unwrap should expose the cause")
	assert.Equal(t, ExitDependencyFailed, wrapped.Code)

	bare := NewCLIError(ExitUvNotFound, "uv not found on PATH")
	assert.Equal(t, "uv not found on PATH", bare.Error())
	assert.Nil(t, bare.Unwrap())
}
