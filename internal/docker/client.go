package docker

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/docker/docker/client"

	"github.com/mmr-tortoise/devup/internal/model"
)

// pingTimeout bounds the daemon connectivity check. Docker Desktop on
// macOS can take a moment to answer, so this is deliberately generous.
const pingTimeout = 5 * time.Second

// Client wraps the Docker Engine SDK client. It exists so the sandbox
// code can verify daemon connectivity before starting a container and
// tear containers down through the API afterwards.
type Client struct {
	inner *client.Client
}

// NewClient connects to the Docker daemon.
//
// DOCKER_HOST is respected when set; otherwise the standard Unix socket
// locations are probed (/var/run/docker.sock, then the per-user Docker
// Desktop socket). Container mode is Linux/macOS only — the provisioning
// container itself is always Linux.
//
// Returns a CLIError with ExitDockerNotRunning when no socket is found
// or the SDK client cannot be constructed.
func NewClient() (*Client, error) {
	host := os.Getenv("DOCKER_HOST")
	if host == "" {
		detected, err := detectSocket()
		if err != nil {
			return nil, model.WrapCLIError(model.ExitDockerNotRunning,
				"Docker socket not found", err)
		}
		host = detected
	}

	c, err := client.NewClientWithOpts(
		client.WithHost(host),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitDockerNotRunning,
			fmt.Sprintf("failed to create Docker client for host %q", host), err)
	}

	return &Client{inner: c}, nil
}

// detectSocket probes the known Unix socket paths in preference order and
// returns the Docker host URI for the first one that exists. Existence is
// checked rather than connectivity — Ping handles the latter.
func detectSocket() (string, error) {
	candidates := []string{"/var/run/docker.sock"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, home+"/.docker/run/docker.sock")
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return "unix://" + path, nil
		}
	}
	return "", fmt.Errorf("Docker socket not found at any of %v — is Docker running?", candidates)
}

// Ping verifies the daemon is reachable and responsive.
func (c *Client) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if _, err := c.inner.Ping(pingCtx); err != nil {
		return model.WrapCLIError(model.ExitDockerNotRunning,
			"Docker daemon is not responding — is Docker running?", err)
	}
	return nil
}

// Close releases the SDK client's resources. Safe to call multiple times.
func (c *Client) Close() error {
	if c.inner != nil {
		return c.inner.Close()
	}
	return nil
}

// Inner exposes the underlying SDK client for operations not covered by
// the wrapper (container stop during sandbox teardown).
func (c *Client) Inner() *client.Client {
	return c.inner
}
