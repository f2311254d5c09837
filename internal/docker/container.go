// container.go implements the container lifecycle invocations used by the
// deploy pipeline: stop, rm, pull and run.
//
// None of these functions decide whether a failure is fatal. They return
// the model.CommandResult unchanged and leave that decision to the caller:
// stop and rm failures are expected on a first deployment, while pull and
// run failures end the pipeline.
package docker

import (
	"context"
	"strings"

	"github.com/mmr-tortoise/webui-deploy/internal/model"
)

// StopCommand returns "<runtime> stop <name>".
func StopCommand(cli *Client, containerName string) model.Command {
	return cli.Command("stop", containerName)
}

// RemoveCommand returns "<runtime> rm <name>".
func RemoveCommand(cli *Client, containerName string) model.Command {
	return cli.Command("rm", containerName)
}

// PullCommand returns "<runtime> pull <image>:<tag>".
func PullCommand(cli *Client, imageRef string) model.Command {
	return cli.Command("pull", imageRef)
}

// RunCommand returns the full "<runtime> run ..." invocation for spec.
func RunCommand(cli *Client, spec *RunSpec) model.Command {
	args := spec.Args()
	parts := make([]interface{}, 0, len(args))
	for _, a := range args {
		parts = append(parts, a)
	}
	return cli.Command(parts...)
}

// StopContainer stops the named container. The runtime sends SIGTERM and
// falls back to SIGKILL after its default grace period.
func StopContainer(ctx context.Context, cli *Client, containerName string) model.CommandResult {
	return cli.Exec(ctx, StopCommand(cli, containerName))
}

// RemoveContainer removes the named (stopped) container. Named volumes
// mounted by the container are left untouched.
func RemoveContainer(ctx context.Context, cli *Client, containerName string) model.CommandResult {
	return cli.Exec(ctx, RemoveCommand(cli, containerName))
}

// PullImage fetches imageRef from its registry.
func PullImage(ctx context.Context, cli *Client, imageRef string) model.CommandResult {
	return cli.Exec(ctx, PullCommand(cli, imageRef))
}

// RunContainer creates and starts a detached container from spec.
// On success the runtime prints the new container ID on stdout.
func RunContainer(ctx context.Context, cli *Client, spec *RunSpec) model.CommandResult {
	return cli.Exec(ctx, RunCommand(cli, spec))
}

// IsNoSuchContainer reports whether a failed stop or rm invocation failed
// only because the container does not exist. Docker and Podman both print
// "No such container" (in varying case) on stderr in that situation.
func IsNoSuchContainer(result model.CommandResult) bool {
	if result.Outcome != model.OutcomeExitFailure {
		return false
	}
	return strings.Contains(strings.ToLower(result.Stderr), "no such container")
}
