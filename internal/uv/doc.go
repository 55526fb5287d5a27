// Package uv wraps invocations of the uv package manager binary.
//
// uv handles both halves of provisioning: creating virtual environments
// ("uv venv") and installing packages into them ("uv pip install"). devup
// shells out to the binary rather than reimplementing any resolution
// logic — the package manager owns dependency resolution entirely.
//
// The Runner interface exists so the provisioning pipeline can be driven
// against a recorded fake in tests, and so the same pipeline can run
// either on the host (ExecRunner) or inside a container
// (docker.ContainerRunner) without changes.
package uv
