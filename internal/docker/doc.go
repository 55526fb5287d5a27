// Package docker implements the optional container provisioning mode.
//
// With --container, devup runs the exact same provisioning sequence
// inside a disposable Linux container that ships uv, with the repository
// bind-mounted at /workspace. Because the pipeline only ever uses paths
// relative to the repository root, no path translation is needed: the
// virtual environment lands on the host filesystem through the mount.
//
// The package wraps the Docker Engine SDK client for daemon connectivity
// checks and container teardown, and shells out to the docker CLI for
// run/exec — the same split the rest of the tool uses for uv itself.
package docker
