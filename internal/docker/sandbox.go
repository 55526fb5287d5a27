package docker

import (
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/docker/docker/api/types/container"

	"github.com/mmr-tortoise/devup/internal/model"
)

const (
	// LabelManagedBy identifies containers started by devup, so stray
	// sandboxes can be found and cleaned up manually if a run is
	// interrupted before teardown.
	LabelManagedBy = "devup.managed-by"

	// ManagedByValue is the value stored under LabelManagedBy.
	ManagedByValue = "devup"

	// DefaultImage is the provisioning container image. The official uv
	// images ship both uv and a Python toolchain, so the sandbox needs
	// no setup beyond starting it.
	DefaultImage = "ghcr.io/astral-sh/uv:python3.12-bookworm"

	// workspaceDir is where the repository root is mounted inside the
	// sandbox. All uv invocations run with this as their working
	// directory, mirroring how the host runner uses the real root.
	workspaceDir = "/workspace"
)

// StartSandbox launches a detached provisioning container with the
// repository root bind-mounted at /workspace and returns its container ID.
//
// The container runs "sleep infinity" as its main process and is removed
// automatically on stop (--rm). The "docker run" CLI is used here instead
// of the SDK because the SDK's ContainerCreate/ContainerStart workflow
// requires assembling Config/HostConfig structs for what is a single
// well-known command line.
func StartSandbox(ctx context.Context, root, image string) (string, error) {
	if image == "" {
		image = DefaultImage
	}

	cmd := exec.CommandContext(ctx, "docker", buildSandboxRunArgs(root, image)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", model.WrapCLIError(model.ExitDockerNotRunning,
			fmt.Sprintf("failed to start provisioning container: %s",
				strings.TrimSpace(string(output))),
			err)
	}

	// docker run -d prints the full container ID as its only output.
	return strings.TrimSpace(string(output)), nil
}

// buildSandboxRunArgs assembles the "docker run" argument list for the
// sandbox container. Split out as a pure function for testing.
func buildSandboxRunArgs(root, image string) []string {
	return []string{
		"run", "-d", "--rm",
		"--label", LabelManagedBy + "=" + ManagedByValue,
		"-v", root + ":" + workspaceDir,
		"-w", workspaceDir,
		image,
		"sleep", "infinity",
	}
}

// StopSandbox stops the sandbox container through the Docker API. Because
// the container was started with --rm, stopping also removes it.
func StopSandbox(ctx context.Context, cli *Client, containerID string) error {
	if err := cli.Inner().ContainerStop(ctx, containerID, container.StopOptions{}); err != nil {
		return model.WrapCLIError(model.ExitDockerNotRunning,
			fmt.Sprintf("failed to stop provisioning container %q", containerID), err)
	}
	return nil
}

// ContainerRunner implements uv.Runner by executing uv inside a running
// sandbox container via "docker exec".
//
// The dir parameter of Run is ignored: the repository root is always
// mounted at /workspace, and the provisioning pipeline only passes paths
// relative to the root, so the fixed working directory stands in for it.
type ContainerRunner struct {
	// ContainerID is the sandbox container to exec into.
	ContainerID string
}

// Run executes "uv args..." inside the sandbox with the given extra
// environment variables. Output handling matches the host runner: stdout
// is returned, stderr is folded into the error on failure.
func (r *ContainerRunner) Run(ctx context.Context, _ string, env map[string]string, args ...string) (string, error) {
	execArgs := buildExecArgs(r.ContainerID, env, args)

	cmd := exec.CommandContext(ctx, "docker", execArgs...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		message := fmt.Sprintf("uv %s failed in container", strings.Join(args, " "))
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			message = fmt.Sprintf("%s: %s", message, detail)
		}
		return "", fmt.Errorf("%s: %w", message, err)
	}

	return stdout.String(), nil
}

// buildExecArgs assembles the "docker exec" argument list. Environment
// variables are emitted in sorted key order so the command line is
// deterministic.
func buildExecArgs(containerID string, env map[string]string, args []string) []string {
	out := []string{"exec", "-w", workspaceDir}

	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, "-e", k+"="+env[k])
	}

	out = append(out, containerID, "uv")
	return append(out, args...)
}
