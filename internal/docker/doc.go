// Package docker drives the container runtime through its command-line
// interface for the webui-deploy CLI.
//
// This package handles:
//   - The startup version probe that gates every other invocation
//   - Container lifecycle invocations: stop, rm, pull, run
//   - Building the run invocation from Docker Engine API types
//     (mount.Mount, container.RestartPolicy, container.DeviceRequest)
//     and rendering it to CLI tokens in a fixed order
//   - Image reference parsing via github.com/distribution/reference
//
// Every invocation goes through a runner.Runner, so the runtime binary
// (docker, or a compatible CLI such as podman) is never contacted through
// any channel other than its command line.
package docker
