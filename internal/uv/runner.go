package uv

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/mmr-tortoise/devup/internal/model"
)

// Runner executes uv commands. dir is the working directory for the
// invocation (always the repository root during provisioning, so that
// relative paths in arguments resolve consistently). env holds extra
// environment variables set for this invocation only, on top of the
// inherited process environment.
//
// On success the captured stdout is returned. On failure the error
// includes the captured stderr, because uv writes its resolution
// diagnostics there.
type Runner interface {
	Run(ctx context.Context, dir string, env map[string]string, args ...string) (string, error)
}

// ExecRunner runs uv as a child process on the host.
type ExecRunner struct {
	// Bin is the uv executable path. Set by NewRunner via PATH lookup;
	// tests may point it at a stub binary.
	Bin string
}

// NewRunner locates the uv binary on PATH and returns a runner bound to it.
//
// Returns a CLIError with ExitUvNotFound when the binary is missing, with
// an install hint in the message — this is the very first thing a new
// contributor hits on a machine without uv.
func NewRunner() (*ExecRunner, error) {
	bin, err := exec.LookPath("uv")
	if err != nil {
		return nil, model.WrapCLIError(model.ExitUvNotFound,
			"uv not found on PATH (install it from https://docs.astral.sh/uv/)", err)
	}
	return &ExecRunner{Bin: bin}, nil
}

// Run executes uv with the given arguments.
//
// stdout and stderr are captured separately: stdout is returned to the
// caller (package listings, version strings), while stderr is folded into
// the error message on failure. The two are not combined because uv
// interleaves progress output on stderr even on success.
func (r *ExecRunner) Run(ctx context.Context, dir string, env map[string]string, args ...string) (string, error) {
	// #nosec G204 — args are constructed internally, not from user input
	cmd := exec.CommandContext(ctx, r.Bin, args...)
	cmd.Dir = dir

	// Inherit the current process environment and add the per-invocation
	// variables. os.Environ() returns a copy, so appending does not affect
	// this process.
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		message := fmt.Sprintf("uv %s failed", strings.Join(args, " "))
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			message = fmt.Sprintf("%s: %s", message, detail)
		}
		return "", fmt.Errorf("%s: %w", message, err)
	}

	return stdout.String(), nil
}

// Version returns the uv version string, e.g. "uv 0.4.18". Used by the
// doctor command to show which uv the provisioner would drive.
func (r *ExecRunner) Version(ctx context.Context) (string, error) {
	out, err := r.Run(ctx, "", nil, "--version")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
