package venv

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/devup/internal/config"
	"github.com/mmr-tortoise/devup/internal/model"
)

// fakeRunner records every uv invocation instead of executing it, and can
// be told to fail on a specific command. This lets the tests assert the
// exact provisioning sequence without uv installed.
type fakeRunner struct {
	calls   [][]string
	envs    []map[string]string
	failOn  string // fail the call whose joined args start with this prefix
	failErr error
}

func (f *fakeRunner) Run(_ context.Context, _ string, env map[string]string, args ...string) (string, error) {
	f.calls = append(f.calls, args)
	f.envs = append(f.envs, env)

	joined := strings.Join(args, " ")
	if f.failOn != "" && strings.HasPrefix(joined, f.failOn) {
		if f.failErr != nil {
			return "", f.failErr
		}
		return "", errors.New("uv " + joined + " failed")
	}

	if strings.HasPrefix(joined, "pip list") {
		return "Package  Version\n-------- -------\nagno     0.0.1\n", nil
	}
	return "", nil
}

// joinedCalls renders the recorded invocations for sequence assertions.
func (f *fakeRunner) joinedCalls() []string {
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, strings.Join(c, " "))
	}
	return out
}

// newTestRoot creates a repository root with the default sub-project
// layout and empty manifests, so the host-side existence checks pass.
func newTestRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, sp := range []string{"libs/agno", "libs/agno_infra"} {
		dir := filepath.Join(root, filepath.FromSlash(sp))
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "requirements.txt"), nil, 0o644))
	}
	return root
}

// TestProvision_Sequence verifies the full command sequence for the
// default configuration: venv creation, first sub-project, package table,
// second sub-project, listing — in exactly that order.
func TestProvision_Sequence(t *testing.T) {
	root := newTestRoot(t)
	runner := &fakeRunner{}
	var out bytes.Buffer

	p := New(root, config.DefaultConfig(), runner, &out)
	require.NoError(t, p.Provision(context.Background()))

	assert.Equal(t, []string{
		"venv .venv --python 3.12",
		"pip install -r libs/agno/requirements.txt",
		"pip install -e ./libs/agno[tests]",
		"pip install mypy==1.11.2 ruff==0.6.5 pytest pytest-asyncio fastapi[standard] openai",
		"pip install -r libs/agno_infra/requirements.txt",
		"pip install -e ./libs/agno_infra[dev]",
		"pip list",
	}, runner.joinedCalls())
}

// TestProvision_VirtualEnvVariable verifies that every install and list
// invocation carries VIRTUAL_ENV, while venv creation does not (the
// environment does not exist yet at that point).
func TestProvision_VirtualEnvVariable(t *testing.T) {
	root := newTestRoot(t)
	runner := &fakeRunner{}

	p := New(root, config.DefaultConfig(), runner, &bytes.Buffer{})
	require.NoError(t, p.Provision(context.Background()))

	require.NotEmpty(t, runner.envs)
	assert.Nil(t, runner.envs[0], "venv creation should not set VIRTUAL_ENV")
	for i, env := range runner.envs[1:] {
		assert.Equal(t, ".venv", env["VIRTUAL_ENV"], "call %d should target the venv", i+1)
	}
}

// TestProvision_RemovesExistingVenv verifies that a pre-existing
// environment directory is deleted before recreation.
func TestProvision_RemovesExistingVenv(t *testing.T) {
	root := newTestRoot(t)
	stale := filepath.Join(root, ".venv", "lib")
	require.NoError(t, os.MkdirAll(stale, 0o755))

	p := New(root, config.DefaultConfig(), &fakeRunner{}, &bytes.Buffer{})
	require.NoError(t, p.Provision(context.Background()))

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "stale venv contents should be removed")
}

// TestProvision_FailFast verifies that a failure stops the sequence
// immediately: nothing after the failing command runs, and the error
// carries the dependency-resolution exit code.
func TestProvision_FailFast(t *testing.T) {
	root := newTestRoot(t)
	runner := &fakeRunner{failOn: "pip install -e ./libs/agno[tests]"}

	p := New(root, config.DefaultConfig(), runner, &bytes.Buffer{})
	err := p.Provision(context.Background())
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitDependencyFailed, cliErr.Code)

	// The failing call is the last one recorded — neither the package
	// table nor the second sub-project was attempted.
	calls := runner.joinedCalls()
	assert.Equal(t, "pip install -e ./libs/agno[tests]", calls[len(calls)-1])
	assert.Len(t, calls, 3)
}

// TestProvision_EnvCreationFailure verifies the exit-code mapping when
// the requested Python version cannot be provided.
func TestProvision_EnvCreationFailure(t *testing.T) {
	root := newTestRoot(t)
	runner := &fakeRunner{failOn: "venv"}

	p := New(root, config.DefaultConfig(), runner, &bytes.Buffer{})
	err := p.Provision(context.Background())
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitEnvCreationFailed, cliErr.Code)
	assert.Len(t, runner.calls, 1, "no install should run after venv creation fails")
}

// TestProvision_MissingManifest verifies that a missing dependency
// manifest halts the run before uv is invoked for it.
func TestProvision_MissingManifest(t *testing.T) {
	root := newTestRoot(t)
	require.NoError(t, os.Remove(filepath.Join(root, "libs", "agno_infra", "requirements.txt")))

	runner := &fakeRunner{}
	p := New(root, config.DefaultConfig(), runner, &bytes.Buffer{})
	err := p.Provision(context.Background())
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitFilesystemError, cliErr.Code)

	// Everything up to and including the package table ran; the infra
	// manifest install was never attempted.
	for _, call := range runner.joinedCalls() {
		assert.NotContains(t, call, "agno_infra")
	}
}

// TestProvision_ActivationHintIsFinalLine verifies the output contract:
// on success the last line printed is the activation instruction.
func TestProvision_ActivationHintIsFinalLine(t *testing.T) {
	root := newTestRoot(t)
	var out bytes.Buffer

	p := New(root, config.DefaultConfig(), &fakeRunner{}, &out)
	require.NoError(t, p.Provision(context.Background()))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	assert.Equal(t, "Activate the environment with: source .venv/bin/activate",
		lines[len(lines)-1])
}

// TestProvision_KeepVenv verifies that --keep-venv skips removal and
// creation but requires the environment to exist.
func TestProvision_KeepVenv(t *testing.T) {
	root := newTestRoot(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".venv"), 0o755))

	runner := &fakeRunner{}
	p := New(root, config.DefaultConfig(), runner, &bytes.Buffer{})
	p.KeepVenv = true
	require.NoError(t, p.Provision(context.Background()))

	for _, call := range runner.joinedCalls() {
		assert.NotContains(t, call, "venv .venv", "venv creation should be skipped")
	}
}

// TestProvision_KeepVenvMissing verifies the error when --keep-venv is
// set but no environment exists to reuse.
func TestProvision_KeepVenvMissing(t *testing.T) {
	root := newTestRoot(t)

	p := New(root, config.DefaultConfig(), &fakeRunner{}, &bytes.Buffer{})
	p.KeepVenv = true
	err := p.Provision(context.Background())
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitEnvCreationFailed, cliErr.Code)
}

// TestProvision_Idempotent verifies that two consecutive runs issue the
// identical command sequence — recreating the environment from scratch
// each time is what makes re-running safe.
func TestProvision_Idempotent(t *testing.T) {
	root := newTestRoot(t)

	first := &fakeRunner{}
	p := New(root, config.DefaultConfig(), first, &bytes.Buffer{})
	require.NoError(t, p.Provision(context.Background()))

	second := &fakeRunner{}
	p.Runner = second
	require.NoError(t, p.Provision(context.Background()))

	assert.Equal(t, first.joinedCalls(), second.joinedCalls())
}
