package docker

import (
	"context"
	"errors"
	"strings"

	"github.com/mmr-tortoise/webui-deploy/internal/model"
	"github.com/mmr-tortoise/webui-deploy/internal/runner"
)

// Client drives a container runtime CLI binary through a runner.Runner.
//
// Usage:
//
//	c := docker.NewClient("docker", runner.NewExecRunner(log))
//	if _, err := c.Probe(ctx); err != nil { /* runtime not available */ }
//	result := docker.PullImage(ctx, c, "ghcr.io/open-webui/open-webui:main")
type Client struct {
	// binary is the runtime executable, e.g. "docker".
	binary string

	// runner executes every invocation. Injected so tests can script
	// runtime responses without a real daemon.
	runner runner.Runner
}

// NewClient creates a Client for the given runtime binary.
// An empty binary defaults to "docker".
func NewClient(binary string, r runner.Runner) *Client {
	if strings.TrimSpace(binary) == "" {
		binary = model.DefaultRuntime
	}
	return &Client{binary: binary, runner: r}
}

// Binary returns the runtime executable name.
func (c *Client) Binary() string {
	return c.binary
}

// Command builds a runtime invocation: the binary followed by args.
func (c *Client) Command(args ...interface{}) model.Command {
	return model.NewCommand(append([]interface{}{c.binary}, args...)...)
}

// Exec runs a runtime invocation built by Command.
func (c *Client) Exec(ctx context.Context, cmd model.Command) model.CommandResult {
	return c.runner.Run(ctx, cmd)
}

// VersionCommand returns the "<runtime> --version" probe invocation.
func (c *Client) VersionCommand() model.Command {
	return c.Command("--version")
}

// Probe verifies that the runtime CLI is installed and answers a version
// query. It returns the trimmed version string on success.
//
// Any failure (missing binary, non-zero exit, unexpected fault) is turned
// into a model.CLIError with ExitDockerNotRunning, so callers can exit
// with a non-zero status before any lifecycle step runs.
func (c *Client) Probe(ctx context.Context) (string, error) {
	result := c.Exec(ctx, c.VersionCommand())
	if !result.Success() {
		return "", model.WrapCLIError(
			model.ExitDockerNotRunning,
			"Docker command not found or Docker daemon is not responding. "+
				"Please ensure Docker is installed, running, and accessible in your system's PATH",
			errors.New(result.Summary()),
		)
	}
	return strings.TrimSpace(result.Stdout), nil
}
