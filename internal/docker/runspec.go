package docker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/distribution/reference"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/go-connections/nat"

	"github.com/mmr-tortoise/webui-deploy/internal/model"
)

const (
	// DataMountTarget is where the application keeps chats, users and
	// settings inside the container.
	DataMountTarget = "/app/backend/data"

	// ModelMountTarget is where the bundled model server keeps downloaded
	// models inside the container.
	ModelMountTarget = "/root/.ollama"

	// HostGatewayAlias lets the standalone variant reach a model server
	// running on the host, outside any container.
	HostGatewayAlias = "host.docker.internal:host-gateway"

	// bundledTagMarker identifies image tags that bundle the model server.
	bundledTagMarker = "ollama"
)

// IsBundled reports whether tag selects the variant that packages the
// model server alongside the application. The check is a case-insensitive
// substring match, so "ollama", "OLLAMA" and "git-ollama" all qualify.
func IsBundled(tag string) bool {
	return strings.Contains(strings.ToLower(tag), bundledTagMarker)
}

// ImageRef validates an image name and tag and returns "<name>:<tag>"
// exactly as configured. The name is never normalized, so
// "docker.io/library/nginx" stays as written.
//
// The name must not carry its own tag or digest; the tag is always taken
// from the tag argument.
func ImageRef(name, tag string) (string, error) {
	named, err := reference.ParseNormalizedNamed(name)
	if err != nil {
		return "", fmt.Errorf("invalid image name %q: %w", name, err)
	}
	if _, ok := named.(reference.Tagged); ok {
		return "", fmt.Errorf("image name %q must not include a tag; set the tag separately", name)
	}
	if _, ok := named.(reference.Digested); ok {
		return "", fmt.Errorf("image name %q must not include a digest", name)
	}

	if _, err := reference.WithTag(named, tag); err != nil {
		return "", fmt.Errorf("invalid image tag %q: %w", tag, err)
	}
	return name + ":" + tag, nil
}

// VariantOptions holds the run options that depend on the image variant.
// They are rendered after the base options, in field order.
type VariantOptions struct {
	// Mounts are extra volumes, e.g. the model volume of the bundled variant.
	Mounts []mount.Mount

	// DeviceRequests request host devices; rendered as --gpus.
	DeviceRequests []container.DeviceRequest

	// ExtraHosts are host-to-IP aliases; rendered as --add-host=<host>.
	ExtraHosts []string
}

// RunSpec describes one "run" invocation using Docker Engine API types.
//
// Args renders the spec in a fixed order, which is part of the CLI
// contract:
//
//	run -d -p <ports> -v <mounts> --name <name> --restart <policy> <variant options> <image>
type RunSpec struct {
	// Image is the image reference as configured, rendered last.
	Image string

	// Name is the container name.
	Name string

	// Detach runs the container in the background (-d).
	Detach bool

	// Ports are the published port mappings (-p).
	Ports []nat.PortMapping

	// Mounts are the base volume mounts (-v), rendered before --name.
	Mounts []mount.Mount

	// RestartPolicy is rendered as --restart when its name is set.
	RestartPolicy container.RestartPolicy

	// Variant holds the variant-specific options.
	Variant VariantOptions
}

// BuildRunSpec assembles the run invocation for cfg.
//
// Every deployment is detached, publishes HostPort:ContainerPort, mounts
// the data volume, and restarts always. The bundled variant additionally
// mounts the model volume and requests all GPUs; the standalone variant
// instead adds the host-gateway alias so the application can reach a
// model server on the host.
func BuildRunSpec(cfg model.Config) (*RunSpec, error) {
	image, err := ImageRef(cfg.ImageName, cfg.ImageTag)
	if err != nil {
		return nil, err
	}

	ports, err := nat.ParsePortSpec(fmt.Sprintf("%d:%d", cfg.HostPort, cfg.ContainerPort))
	if err != nil {
		return nil, fmt.Errorf("invalid port mapping %d:%d: %w", cfg.HostPort, cfg.ContainerPort, err)
	}

	spec := &RunSpec{
		Image:  image,
		Name:   cfg.ContainerName,
		Detach: true,
		Ports:  ports,
		Mounts: []mount.Mount{
			{Type: mount.TypeVolume, Source: cfg.DataVolume, Target: DataMountTarget},
		},
		RestartPolicy: container.RestartPolicy{Name: container.RestartPolicyAlways},
	}

	if IsBundled(cfg.ImageTag) {
		spec.Variant = VariantOptions{
			Mounts: []mount.Mount{
				{Type: mount.TypeVolume, Source: cfg.ModelVolume, Target: ModelMountTarget},
			},
			// Count -1 with the "gpu" capability is what "--gpus all" means
			// to the Engine API.
			DeviceRequests: []container.DeviceRequest{
				{Count: -1, Capabilities: [][]string{{"gpu"}}},
			},
		}
	} else {
		spec.Variant = VariantOptions{
			ExtraHosts: []string{HostGatewayAlias},
		}
	}

	return spec, nil
}

// Args renders the spec as run arguments, without the runtime binary.
func (s *RunSpec) Args() []string {
	args := []string{"run"}
	if s.Detach {
		args = append(args, "-d")
	}
	for _, p := range s.Ports {
		args = append(args, "-p", formatPortMapping(p))
	}
	for _, m := range s.Mounts {
		args = append(args, "-v", formatMount(m))
	}
	if s.Name != "" {
		args = append(args, "--name", s.Name)
	}
	if s.RestartPolicy.Name != "" {
		args = append(args, "--restart", formatRestartPolicy(s.RestartPolicy))
	}

	for _, m := range s.Variant.Mounts {
		args = append(args, "-v", formatMount(m))
	}
	for _, d := range s.Variant.DeviceRequests {
		args = append(args, "--gpus", formatDeviceRequest(d))
	}
	for _, h := range s.Variant.ExtraHosts {
		args = append(args, "--add-host="+h)
	}

	return append(args, s.Image)
}

// formatPortMapping renders a mapping as [hostIP:]hostPort:containerPort[/proto].
// The protocol suffix is omitted for tcp, the CLI default.
func formatPortMapping(p nat.PortMapping) string {
	var b strings.Builder
	if p.Binding.HostIP != "" {
		b.WriteString(p.Binding.HostIP)
		b.WriteByte(':')
	}
	b.WriteString(p.Binding.HostPort)
	b.WriteByte(':')
	b.WriteString(p.Port.Port())
	if proto := p.Port.Proto(); proto != "" && proto != "tcp" {
		b.WriteByte('/')
		b.WriteString(proto)
	}
	return b.String()
}

// formatMount renders a volume mount in -v short syntax.
func formatMount(m mount.Mount) string {
	s := m.Source + ":" + m.Target
	if m.ReadOnly {
		s += ":ro"
	}
	return s
}

// formatRestartPolicy renders a policy as the --restart value.
func formatRestartPolicy(p container.RestartPolicy) string {
	if p.Name == container.RestartPolicyOnFailure && p.MaximumRetryCount > 0 {
		return string(p.Name) + ":" + strconv.Itoa(p.MaximumRetryCount)
	}
	return string(p.Name)
}

// formatDeviceRequest renders a device request as the --gpus value.
func formatDeviceRequest(d container.DeviceRequest) string {
	if len(d.DeviceIDs) > 0 {
		return "device=" + strings.Join(d.DeviceIDs, ",")
	}
	if d.Count < 0 {
		return "all"
	}
	return strconv.Itoa(d.Count)
}
